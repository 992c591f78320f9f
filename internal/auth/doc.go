// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

/*
Package auth provides authentication for the diagnostic log API.

Three modes are supported, selected by configuration:

  - none: every request is anonymous. Intended for local development
    only; a warning is logged at startup.
  - basic: HTTP Basic Authentication against a single configured
    credential pair, verified with bcrypt.
  - jwt: bearer tokens issued by POST /api/v1/auth/login and signed
    with HMAC-SHA256.

Authenticated requests carry *Claims in the request context; the
authorization layer (internal/authz) reads the role from there.

The login endpoint is additionally guarded by a per-IP rate limiter to
slow brute-force attempts.
*/
package auth
