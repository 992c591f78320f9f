// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

// Package analytics mirrors recorded entries into an embedded DuckDB
// table and serves the aggregate queries the key-value layout cannot:
// counts by level, top categories, and per-minute error rates. The
// mirror is asynchronous and lossy under pressure; the diagnostic
// buffer and the badger store remain the sources of truth.
package analytics
