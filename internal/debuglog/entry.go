// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package debuglog

import (
	"time"

	"github.com/goccy/go-json"
)

// Entry is one recorded diagnostic event. Entries are immutable once
// created; the payload is sanitized before the Entry is built, so an
// Entry never carries unredacted sensitive fields.
type Entry struct {
	// Timestamp is the creation time, serialized RFC 3339.
	Timestamp time.Time `json:"timestamp"`

	// Level is the entry's severity.
	Level Level `json:"level"`

	// Category is a free-form label such as "API Call" or
	// "Component Lifecycle".
	Category string `json:"category"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Data is the sanitized structured payload. Nil means the caller
	// supplied no payload. When sanitization fails the payload is the
	// failure marker object instead of an error.
	Data json.RawMessage `json:"data,omitempty"`

	// Component identifies the originating UI component, when known.
	Component string `json:"component,omitempty"`

	// Route is the client navigation path at log time, derived from the
	// call context rather than supplied by the caller.
	Route string `json:"route,omitempty"`

	// SessionID is shared by every entry of one process lifetime.
	SessionID string `json:"sessionId"`
}

// Filter selects entries from the buffer. All set fields are combined
// with AND; the zero Filter matches everything.
type Filter struct {
	// MaxLevel keeps entries whose rank is <= MaxLevel (i.e. at least
	// that severe). Nil disables level filtering.
	MaxLevel *Level

	// Category keeps entries whose category contains this substring,
	// case-insensitively.
	Category string

	// Component keeps entries whose component contains this substring,
	// case-insensitively.
	Component string

	// Since keeps entries with Timestamp >= Since.
	Since time.Time
}

// ExportDocument is the shape produced by Logger.Export.
type ExportDocument struct {
	SessionID  string    `json:"sessionId"`
	Config     Config    `json:"config"`
	Logs       []Entry   `json:"logs"`
	ExportedAt time.Time `json:"exportedAt"`
}
