// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

/*
Package services provides suture.Service adapters for components that
do not natively fit the supervision model.

The shipper, websocket hub, and analytics consumer already expose
Serve(ctx) error and are added to the tree directly. This package
covers the rest:

  - HTTPServerService translates http.Server's blocking ListenAndServe
    into a context-aware Serve with graceful shutdown.
  - RetentionSweeper periodically prunes expired sessions from the
    entry store.
  - MemorySampler records heap statistics as diagnostic entries on a
    fixed interval.

All adapters implement fmt.Stringer; suture uses the name in its
supervision log lines.
*/
package services
