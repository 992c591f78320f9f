// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

// Package main provides the Tabularius HTTP server.
//
// @title Tabularius API
// @version 1.0
// @description Diagnostic event logging service: structured log ingest, session persistence, live tail, and runtime capture configuration.
// @description
// @description ## Authentication
// @description
// @description With AUTH_MODE=jwt, obtain a bearer token from `/api/v1/auth/login` and send it as `Authorization: Bearer <token>`. With AUTH_MODE=basic, send credentials on every request. AUTH_MODE=none disables authentication (development only).
// @description
// @description ## Roles
// @description
// @description `viewer` reads logs and configuration and may ingest entries and events. `admin` additionally clears logs, deletes sessions, and mutates the capture configuration.
// @description
// @description ## Rate limiting
// @description
// @description Per-IP limits apply per endpoint group; 429 responses use the standard error envelope.
//
// @contact.name Tom F.
// @contact.url https://github.com/tomtom215/tabularius
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @BasePath /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token prefixed with "Bearer "
package main
