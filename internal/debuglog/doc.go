// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

// Package debuglog implements the diagnostic event logger at the core of
// Tabularius: a bounded, sanitizing, multi-sink logger for client-side
// diagnostic events.
//
// Entries flow through one pipeline:
//
//	Log() -> level/category filter -> sanitize -> bounded buffer -> sinks
//
// The logger never propagates a panic or error to a caller of Log or any
// of its wrappers. Sinks (console, durable storage, network shipper, and
// any registered mirrors) are independently fault-isolated: a failing
// sink is reported through the operational logger and a metric, and the
// remaining sinks still receive the entry.
//
// Configuration is a copy-on-write value guarded by the logger's mutex,
// so a concurrent Log call observes either the old or the new Config but
// never a partial update. Mutations persist through an optional
// ConfigStore and take effect for the next Log call.
package debuglog
