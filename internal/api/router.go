// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/tabularius/internal/authz"
	"github.com/tomtom215/tabularius/internal/debuglog"
	"github.com/tomtom215/tabularius/internal/middleware"
)

// Router assembles the middleware stacks and route groups.
type Router struct {
	handler *Handler
	chi     *ChiMiddleware
	authz   *authz.Middleware
	faults  *debuglog.FaultDispatcher
}

// NewRouter wires the handler set into a router. faults receives panics
// recovered in handlers so they surface as diagnostic entries.
func NewRouter(
	handler *Handler,
	chiMiddleware *ChiMiddleware,
	authzMiddleware *authz.Middleware,
	faults *debuglog.FaultDispatcher,
) *Router {
	return &Router{
		handler: handler,
		chi:     chiMiddleware,
		authz:   authzMiddleware,
		faults:  faults,
	}
}

// Setup builds the full route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := rt.handler

	// Global stack: every route, including health and metrics.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recoverer(rt.faults))
	r.Use(rt.chi.CORS())

	// Probes and operational surfaces sit outside authentication so
	// orchestrators and scrapers need no credentials.
	r.Route("/health", func(r chi.Router) {
		r.Use(rt.chi.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler())

	// Login: strict httprate tier plus the auth package's per-IP
	// limiter, before any credential work happens.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(rt.chi.RateLimitCustom(RateLimitLogin))
		r.Use(APISecurityHeaders())
		r.With(h.auth.LoginRateLimit).Post("/login", h.Login)
	})

	// Data surface: authenticated and authorized.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.chi.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.ClientRoute)
		r.Use(h.auth.Authenticate)
		r.Use(rt.authz.AuthorizeRequest)

		ingestTier := rt.chi.RateLimitCustom(RateLimitIngest)

		r.With(ingestTier).Post("/logs", h.IngestLogs)
		r.Get("/logs", h.QueryLogs)
		r.With(rt.chi.RateLimitCustom(RateLimitExport), middleware.Compression).
			Get("/logs/export", h.ExportLogs)
		r.Delete("/logs", h.ClearLogs)
		r.Get("/logs/stats", h.LogStats)
		r.With(rt.chi.RateLimitCustom(RateLimitWebSocket)).Get("/logs/tail", h.TailLogs)
		r.Get("/logs/{sessionID}", h.SessionLogs)
		r.Delete("/logs/{sessionID}", h.DeleteSession)

		r.Get("/sessions", h.ListSessions)

		r.With(ingestTier).Post("/events", h.IngestEvent)
		r.With(ingestTier).Post("/events/{type}", h.IngestEvent)

		r.Get("/config", h.GetConfig)
		r.Put("/config/level", h.SetLevel)
		r.Put("/config/categories", h.SetCategories)
		r.Post("/config/categories/{category}", h.EnableCategory)
		r.Delete("/config/categories/{category}", h.DisableCategory)

		r.Post("/timers", h.StartTimer)
		r.Delete("/timers/{id}", h.StopTimer)
	})

	return r
}
