// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

/*
Package supervisor assembles the suture v4 supervision tree that runs
the long-lived parts of the service.

# Tree layout

The root supervisor "tabularius" owns three child supervisors, one per
layer, so a crash in one layer restarts only that layer's services:

	tabularius
	├── data-layer        retention sweeper, analytics consumer
	├── messaging-layer   network shipper, websocket hub, memory sampler
	└── api-layer         HTTP server

Services added to a layer must implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning nil marks the service complete (no restart); returning an
error schedules a restart under the layer's failure budget; returning
ctx.Err() after cancellation is a normal shutdown.

# Logging

Suture's supervision events (service failures, backoff entry/exit) are
routed through sutureslog into the service's zerolog pipeline via
logging.NewSlogLogger.

# Shutdown

Cancel the context passed to Serve or ServeBackground. Each service
gets TreeConfig.ShutdownTimeout to stop; UnstoppedServiceReport names
any that did not make it, which is the first thing to check when the
process hangs on exit.
*/
package supervisor
