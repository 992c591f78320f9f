// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

// Package websocket streams recorded entries to browser clients in real
// time (the live tail). The Hub implements debuglog.Sink and fans each
// sanitized entry out to connected clients; a client may send a filter
// frame (severity ceiling, exact category) applied server-side. Slow
// clients are disconnected rather than ever backpressuring the logger.
//
// Frame protocol (JSON):
//
//	server -> client: {"type":"entry","data":{...Entry...}}
//	client -> server: {"type":"filter","data":{"level":"WARN","category":"API Call"}}
//	client -> server: {"type":"ping"} answered with {"type":"pong"}
package websocket
