// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package api

import (
	"net/http"
)

// HealthLive reports process liveness. It answers as long as the HTTP
// server is serving; no dependency is consulted.
//
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} APIResponse
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{"status": "alive"})
}

// HealthReady reports readiness: the entry store must be open and the
// shipper's circuit breaker must not be open. A degraded analytics
// mirror is reported but does not fail readiness; the core ingest path
// does not depend on it.
//
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 503 {object} APIResponse
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	checks := map[string]string{}
	ready := true

	if h.store == nil || h.store.DB() == nil || h.store.DB().IsClosed() {
		checks["store"] = "closed"
		ready = false
	} else {
		checks["store"] = "ok"
	}

	switch {
	case h.shipper == nil || !h.shipper.Active():
		checks["shipper"] = "inactive"
	case h.shipper.Healthy():
		checks["shipper"] = "ok"
	default:
		checks["shipper"] = "breaker open"
		ready = false
	}

	if h.analytics == nil {
		checks["analytics"] = "disabled"
	} else {
		checks["analytics"] = "ok"
	}

	if !ready {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "not ready", checks)
		return
	}

	rw.Success(map[string]interface{}{
		"status": "ready",
		"checks": checks,
	})
}
