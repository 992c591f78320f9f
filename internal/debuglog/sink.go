// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package debuglog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goccy/go-json"
)

// Sink is one output channel for recorded entries. Write must not block
// for long: the logger delivers synchronously from the caller's
// goroutine, so slow sinks (network, analytics) buffer internally and
// return immediately.
type Sink interface {
	// Name identifies the sink in metrics and operational logs.
	Name() string

	// Write delivers one recorded entry. Errors are isolated by the
	// logger; they never reach the logging caller.
	Write(e Entry) error
}

// ConsoleFormat selects the console sink's rendering.
type ConsoleFormat string

const (
	// ConsoleText renders "[time] [LEVEL] [category][component] message"
	// followed by the redacted data, for development use.
	ConsoleText ConsoleFormat = "text"

	// ConsoleJSON emits each entry as one JSON line, for production.
	ConsoleJSON ConsoleFormat = "json"
)

// ConsoleSink renders entries to an io.Writer, by default stderr.
type ConsoleSink struct {
	mu     sync.Mutex
	w      io.Writer
	format ConsoleFormat
}

// NewConsoleSink creates a console sink. A nil writer means stderr and
// an empty format means text.
func NewConsoleSink(w io.Writer, format ConsoleFormat) *ConsoleSink {
	if w == nil {
		w = os.Stderr
	}
	if format == "" {
		format = ConsoleText
	}
	return &ConsoleSink{w: w, format: format}
}

// Name implements Sink.
func (s *ConsoleSink) Name() string { return "console" }

// Write implements Sink.
func (s *ConsoleSink) Write(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == ConsoleJSON {
		enc := json.NewEncoder(s.w)
		return enc.Encode(e)
	}

	component := ""
	if e.Component != "" {
		component = " [" + e.Component + "]"
	}
	line := fmt.Sprintf("[%s] [%s] [%s]%s %s",
		e.Timestamp.Local().Format("15:04:05"),
		e.Level.String(),
		e.Category,
		component,
		e.Message,
	)
	if len(e.Data) > 0 {
		line += " " + string(e.Data)
	}
	_, err := fmt.Fprintln(s.w, line)
	return err
}
