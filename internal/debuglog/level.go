// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package debuglog

import (
	"fmt"
	"strings"
)

// Level is the severity of a diagnostic entry. Lower ranks are more
// severe: ERROR is rank 0, VERBOSE is rank 4. An entry is recorded only
// when its rank is less than or equal to the configured minimum level.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelVerbose
)

var levelNames = [...]string{"ERROR", "WARN", "INFO", "DEBUG", "VERBOSE"}

// String returns the uppercase level name, or "UNKNOWN" for an
// out-of-range value.
func (l Level) String() string {
	if l < LevelError || l > LevelVerbose {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Valid reports whether l is one of the five defined severities.
func (l Level) Valid() bool {
	return l >= LevelError && l <= LevelVerbose
}

// ParseLevel converts a level name (case-insensitive) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "INFO":
		return LevelInfo, nil
	case "DEBUG":
		return LevelDebug, nil
	case "VERBOSE":
		return LevelVerbose, nil
	default:
		return LevelError, fmt.Errorf("unknown log level %q", s)
	}
}

// MarshalJSON serializes the level as its uppercase name. Names rather
// than numeric ranks keep exported documents readable.
func (l Level) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// UnmarshalJSON parses either an uppercase name or a legacy numeric rank.
func (l *Level) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if parsed, err := ParseLevel(s); err == nil {
		*l = parsed
		return nil
	}
	switch s {
	case "0", "1", "2", "3", "4":
		*l = Level(s[0] - '0')
		return nil
	}
	return fmt.Errorf("invalid level %s", string(data))
}
