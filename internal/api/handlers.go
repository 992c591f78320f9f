// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package api

import (
	"github.com/tomtom215/tabularius/internal/analytics"
	"github.com/tomtom215/tabularius/internal/auth"
	"github.com/tomtom215/tabularius/internal/debuglog"
	"github.com/tomtom215/tabularius/internal/shipper"
	"github.com/tomtom215/tabularius/internal/store"
	"github.com/tomtom215/tabularius/internal/websocket"
)

// Handler carries the service dependencies shared by all endpoints.
type Handler struct {
	logger    *debuglog.Logger
	store     *store.Store
	analytics *analytics.Store // nil when the analytics mirror is disabled
	hub       *websocket.Hub
	auth      *auth.Middleware
	shipper   *shipper.Shipper
	timers    *timerRegistry
}

// NewHandler creates the handler set. analytics may be nil; the stats
// endpoint then degrades to 503.
func NewHandler(
	logger *debuglog.Logger,
	entryStore *store.Store,
	analyticsStore *analytics.Store,
	hub *websocket.Hub,
	authMiddleware *auth.Middleware,
	logShipper *shipper.Shipper,
) *Handler {
	return &Handler{
		logger:    logger,
		store:     entryStore,
		analytics: analyticsStore,
		hub:       hub,
		auth:      authMiddleware,
		shipper:   logShipper,
		timers:    newTimerRegistry(),
	}
}
