// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

// Package shipper forwards recorded entries to an upstream collector.
// It is the network sink: entries enter a bounded queue (newest dropped
// when full, the logging caller never blocks), a background batcher
// flushes by size or interval, and a pluggable transport delivers each
// batch. The HTTP transport is the default; a NATS JetStream transport
// is available behind the nats build tag.
//
// The shipper is a placeholder outside production: Write accepts and
// discards entries so the sink wiring stays uniform across environments.
package shipper
