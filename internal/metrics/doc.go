// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

// Package metrics provides Prometheus instrumentation for the diagnostic
// log pipeline: entries recorded and dropped, redaction activity, buffer
// pressure, per-sink delivery outcomes, shipper batching, store operations,
// API traffic, and live-tail connections. Collectors are registered once at
// package load via promauto and exported at /metrics.
package metrics
