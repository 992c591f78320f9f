// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package debuglog

import "slices"

// Environment selects the default verbosity and sink posture.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
	EnvTesting     Environment = "testing"
)

// CategoryAll is the sentinel that admits every category.
const CategoryAll = "all"

// DefaultMaxStorageEntries bounds the in-memory and persisted buffers
// when no explicit limit is configured.
const DefaultMaxStorageEntries = 1000

// Config is the logger's runtime configuration. It is treated as an
// immutable value: mutations build a new Config and swap it in under the
// logger's mutex, so no Log call ever observes a partial update.
type Config struct {
	// Level is the minimum severity rank to record. Entries with a rank
	// numerically greater than Level are dropped.
	Level Level `json:"level"`

	// Categories is the set of category names to record. The single
	// element "all" admits everything. An empty (but non-nil) set
	// records nothing; only a nil set is rewritten to the sentinel.
	Categories []string `json:"categories"`

	// EnableConsole, EnableStorage, and EnableNetwork toggle the three
	// primary sinks independently.
	EnableConsole bool `json:"enableConsole"`
	EnableStorage bool `json:"enableStorage"`
	EnableNetwork bool `json:"enableNetwork"`

	// MaxStorageEntries bounds both the in-memory buffer and the
	// persisted per-session collection. Oldest entries are evicted first.
	MaxStorageEntries int `json:"maxStorageEntries"`

	// Environment records which default profile produced this config.
	Environment Environment `json:"environment"`
}

// DefaultConfig returns the profile for the given environment:
//
//	development: DEBUG, storage on
//	production:  INFO, storage on
//	testing:     ERROR, storage off
//
// The network sink defaults off everywhere; it additionally requires a
// production environment to leave placeholder mode (see the shipper).
func DefaultConfig(env Environment) Config {
	cfg := Config{
		Level:             LevelInfo,
		Categories:        []string{CategoryAll},
		EnableConsole:     true,
		EnableStorage:     true,
		EnableNetwork:     false,
		MaxStorageEntries: DefaultMaxStorageEntries,
		Environment:       env,
	}

	switch env {
	case EnvDevelopment:
		cfg.Level = LevelDebug
	case EnvProduction:
		cfg.Level = LevelInfo
	case EnvTesting:
		cfg.Level = LevelError
		cfg.EnableConsole = false
		cfg.EnableStorage = false
	default:
		cfg.Environment = EnvDevelopment
		cfg.Level = LevelDebug
	}

	return cfg
}

// clone returns a deep copy so the copy-on-write swap never aliases the
// categories slice of the published value.
func (c Config) clone() Config {
	out := c
	out.Categories = slices.Clone(c.Categories)
	return out
}

// normalize fills in zero values that were never set, such as a missing
// category set or a non-positive buffer bound. A non-nil empty category
// set is preserved: it is the deliberate record-nothing state left by
// disabling the last category.
func (c Config) normalize() Config {
	out := c.clone()
	if out.Categories == nil {
		out.Categories = []string{CategoryAll}
	}
	if out.MaxStorageEntries <= 0 {
		out.MaxStorageEntries = DefaultMaxStorageEntries
	}
	if !out.Level.Valid() {
		out.Level = LevelInfo
	}
	return out
}

// recordsCategory reports whether an entry with the given category would
// be recorded. Recording uses exact matching (or the "all" sentinel);
// the substring matching in Filter applies only to queries.
func (c Config) recordsCategory(category string) bool {
	for _, want := range c.Categories {
		if want == CategoryAll || want == category {
			return true
		}
	}
	return false
}
