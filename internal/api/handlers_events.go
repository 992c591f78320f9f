// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// eventRequest is the typed event ingest payload. Only the fields of
// the named type are consulted; extras are ignored.
type eventRequest struct {
	Type string `json:"type"`

	// page_load, page_error
	URL        string `json:"url,omitempty"`
	LoadTimeMs int64  `json:"load_time_ms,omitempty"`

	// page_error, component_error
	Error string `json:"error,omitempty"`
	Stack string `json:"stack,omitempty"`

	// component_mount, component_unmount, component_error, user_action
	Component string                 `json:"component,omitempty"`
	Props     map[string]interface{} `json:"props,omitempty"`

	// api_call
	Method     string `json:"method,omitempty"`
	Status     int    `json:"status,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`

	// user_action
	Action  string                 `json:"action,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`

	// route_change
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	// auth_event
	Event   string `json:"event,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Success bool   `json:"success,omitempty"`
}

// IngestEvent dispatches one typed event to the matching specialized
// logging method, which owns the level and category conventions. The
// type comes from the body, or from the path when the typed route
// /events/{type} is used.
//
// @Summary Ingest a typed diagnostic event
// @Tags events
// @Accept json
// @Produce json
// @Success 202 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/v1/events [post]
func (h *Handler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req eventRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIngestBody)).Decode(&req); err != nil {
		rw.BadRequest("invalid event payload: " + err.Error())
		return
	}

	if t := chi.URLParam(r, "type"); t != "" {
		req.Type = t
	}

	ctx := r.Context()
	switch req.Type {
	case "page_load":
		if req.URL == "" {
			rw.BadRequest("page_load requires url")
			return
		}
		h.logger.PageLoad(ctx, req.URL, time.Duration(req.LoadTimeMs)*time.Millisecond)

	case "page_error":
		if req.URL == "" || req.Error == "" {
			rw.BadRequest("page_error requires url and error")
			return
		}
		h.logger.PageError(ctx, req.URL, req.Error, req.Stack)

	case "component_mount":
		if req.Component == "" {
			rw.BadRequest("component_mount requires component")
			return
		}
		h.logger.ComponentMount(ctx, req.Component, req.Props)

	case "component_unmount":
		if req.Component == "" {
			rw.BadRequest("component_unmount requires component")
			return
		}
		h.logger.ComponentUnmount(ctx, req.Component)

	case "component_error":
		if req.Component == "" || req.Error == "" {
			rw.BadRequest("component_error requires component and error")
			return
		}
		h.logger.ComponentError(ctx, req.Component, req.Error, req.Stack)

	case "api_call":
		if req.Method == "" || req.URL == "" {
			rw.BadRequest("api_call requires method and url")
			return
		}
		h.logger.APICall(ctx, req.Method, req.URL, req.Status, time.Duration(req.DurationMs)*time.Millisecond)

	case "user_action":
		if req.Action == "" {
			rw.BadRequest("user_action requires action")
			return
		}
		h.logger.UserAction(ctx, req.Action, req.Component, req.Payload)

	case "route_change":
		if req.To == "" {
			rw.BadRequest("route_change requires to")
			return
		}
		h.logger.RouteChange(ctx, req.From, req.To)

	case "auth_event":
		if req.Event == "" {
			rw.BadRequest("auth_event requires event")
			return
		}
		h.logger.AuthEvent(ctx, req.Event, req.UserID, req.Success)

	case "":
		rw.BadRequest("event type is required")
		return

	default:
		rw.BadRequest("unknown event type " + req.Type)
		return
	}

	rw.Accepted(map[string]interface{}{"type": req.Type})
}
