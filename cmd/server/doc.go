// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

/*
Package main is the entry point for the Tabularius server.

Tabularius ingests structured diagnostic entries from instrumented
frontends, buffers and persists them per session, and exposes query,
export, streaming, and configuration endpoints.

# Startup order

 1. Configuration: koanf v2 layered loading (defaults, optional YAML
    file, environment variables).
 2. Operational logging: zerolog, configured by LOG_LEVEL/LOG_FORMAT.
 3. Entry store: BadgerDB holding per-session entries and the runtime
    logger configuration.
 4. Analytics mirror: DuckDB insert pipeline behind the stats endpoint
    (optional; failures degrade stats to 503).
 5. Shipper: batching network sink over HTTP or NATS JetStream, or an
    inactive placeholder when no collector is configured.
 6. Diagnostic logger: level/category filtering, redaction, bounded
    buffer, sink fan-out. A persisted runtime config overrides the
    compiled profile.
 7. Auth and authz: JWT, Basic, or none; Casbin RBAC with an embedded
    model and policy.
 8. HTTP server: chi router, Prometheus metrics, Swagger UI.
 9. Supervision: a suture tree runs the long-lived services and
    restarts crashed ones with failure backoff.

# Configuration

Key environment variables (see internal/config for the full set):

	HTTP_HOST, HTTP_PORT      listener address (default 0.0.0.0:8686)
	ENVIRONMENT               development | production | testing
	STORAGE_DIR               badger directory (STORAGE_IN_MEMORY=true for tests)
	STORAGE_RETENTION         session retention window (default 168h)
	SHIPPER_TRANSPORT         http | nats
	SHIPPER_URL               collector endpoint; empty keeps the placeholder
	AUTH_MODE                 jwt | basic | none (none is rejected in production)
	JWT_SECRET                32+ characters when AUTH_MODE=jwt
	ADMIN_USERNAME/_PASSWORD  credentials for basic auth and the login endpoint
	DEBUGLOG_LEVEL            initial capture level (ERROR..VERBOSE)
	MEMORY_SAMPLE_INTERVAL    heap sampling period; 0 disables

# Build tags

	go build -tags nats ./cmd/server   # embedded broker + JetStream transport

Without the tag, SHIPPER_TRANSPORT=nats falls back to the inactive
placeholder with a warning.

# Shutdown

SIGINT/SIGTERM cancels the supervision context. Each service gets the
configured shutdown timeout to drain; services that fail to stop are
named in the final report. The badger store closes last.
*/
package main
