// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

// Package api exposes the HTTP surface of the service: diagnostic entry
// ingest and query, typed event ingest, runtime logger configuration,
// timers, the WebSocket live tail, authentication, health, metrics, and
// swagger. Routing is Chi with middleware composed per route group.
//
// Every endpoint responds with the envelope {success, data, error, meta}
// so clients handle success and failure uniformly. Request IDs flow from
// the request-id middleware into the meta block for tracing.
package api
