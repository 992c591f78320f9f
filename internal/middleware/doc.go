// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

/*
Package middleware provides HTTP middleware for the ingest and query API.

All components are chi-compatible (func(http.Handler) http.Handler) and
are applied by internal/api when the router is built:

  - RequestID: UUID request tracking plus logging correlation IDs
  - PrometheusMetrics: request count/duration/in-flight instrumentation
  - Recoverer: converts handler panics into captured faults and a JSON 500
  - ClientRoute: propagates the X-Client-Route header so recorded entries
    carry the client's active route
  - Compression: gzip for large export payloads

Thread safety: RequestID and ClientRoute use immutable context values,
Compression pools gzip writers, and the metrics middleware relies on
Prometheus's atomic collectors.
*/
package middleware
