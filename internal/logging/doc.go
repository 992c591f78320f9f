// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

// Package logging provides the operational logger for the service itself,
// built on zerolog. It is distinct from internal/debuglog, which implements
// the diagnostic log pipeline the service exists to host: this package is
// how Tabularius talks about Tabularius (startup, sink failures, shutdown),
// while debuglog records what clients send.
//
// The package exposes a process-global logger guarded by a mutex, configured
// once from main via Init. Request and correlation IDs flow through
// context.Context so that handler logs can be traced across components.
package logging
