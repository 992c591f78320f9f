// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

// Package store persists diagnostic sessions and the logger configuration
// in BadgerDB. Each session lives under one key holding the JSON array of
// its entries, trimmed to the configured bound inside the append
// transaction; the logger configuration lives under a single fixed key.
package store
