// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/tabularius/internal/logging"
)

// timerMaxAge is how long a started timer may stay unstopped before it
// is evicted. Clients that navigate away never send the stop request.
const timerMaxAge = time.Hour

// runningTimer is one started, not yet stopped timer.
type runningTimer struct {
	name    string
	started time.Time
	stop    func() time.Duration
}

// timerRegistry tracks running timers by ID. Stale timers are evicted
// opportunistically on every mutation; no background goroutine needed.
type timerRegistry struct {
	mu     sync.Mutex
	timers map[string]*runningTimer
}

func newTimerRegistry() *timerRegistry {
	return &timerRegistry{timers: make(map[string]*runningTimer)}
}

// add registers a started timer and returns its ID.
func (tr *timerRegistry) add(name string, stop func() time.Duration) string {
	id := uuid.New().String()

	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.evictStaleLocked()
	tr.timers[id] = &runningTimer{
		name:    name,
		started: time.Now(),
		stop:    stop,
	}
	return id
}

// take removes and returns the timer with the given ID.
func (tr *timerRegistry) take(id string) (*runningTimer, bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.evictStaleLocked()
	t, ok := tr.timers[id]
	if ok {
		delete(tr.timers, id)
	}
	return t, ok
}

func (tr *timerRegistry) len() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.timers)
}

func (tr *timerRegistry) evictStaleLocked() {
	cutoff := time.Now().Add(-timerMaxAge)
	for id, t := range tr.timers {
		if t.started.Before(cutoff) {
			delete(tr.timers, id)
			logging.Debug().
				Str("timer", t.name).
				Str("timer_id", id).
				Msg("Evicted stale timer")
		}
	}
}

// StartTimer starts a named performance timer and returns its ID.
//
// @Summary Start a named timer
// @Tags timers
// @Accept json
// @Produce json
// @Success 201 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/v1/timers [post]
func (h *Handler) StartTimer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid payload: " + err.Error())
		return
	}
	if req.Name == "" {
		rw.BadRequest("name is required")
		return
	}

	// The stop closure outlives this request, so detach it from the
	// request's cancellation while keeping the route context value.
	stop := h.logger.StartTimer(context.WithoutCancel(r.Context()), req.Name)
	id := h.timers.add(req.Name, stop)

	rw.Created(map[string]interface{}{"timer_id": id})
}

// StopTimer stops a running timer and returns the elapsed duration. The
// stop also records a Performance entry through the logger.
//
// @Summary Stop a timer
// @Tags timers
// @Produce json
// @Param id path string true "Timer ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/v1/timers/{id} [delete]
func (h *Handler) StopTimer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	t, ok := h.timers.take(id)
	if !ok {
		rw.NotFound("no running timer " + id)
		return
	}

	elapsed := t.stop()
	rw.Success(map[string]interface{}{
		"name":        t.name,
		"duration_ms": elapsed.Milliseconds(),
	})
}
