// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tabularius/internal/debuglog"
)

func TestIngestEvent_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		body         string
		wantCategory string
		wantLevel    debuglog.Level
	}{
		{
			name:         "page load",
			body:         `{"type":"page_load","url":"/dashboard","load_time_ms":420}`,
			wantCategory: debuglog.CategoryPageLifecycle,
			wantLevel:    debuglog.LevelInfo,
		},
		{
			name:         "page error",
			body:         `{"type":"page_error","url":"/dashboard","error":"render failed","stack":"at x"}`,
			wantCategory: debuglog.CategoryPageLifecycle,
			wantLevel:    debuglog.LevelError,
		},
		{
			name:         "component mount",
			body:         `{"type":"component_mount","component":"UserTable","props":{"rows":50}}`,
			wantCategory: debuglog.CategoryComponentLifecycle,
			wantLevel:    debuglog.LevelDebug,
		},
		{
			name:         "component unmount",
			body:         `{"type":"component_unmount","component":"UserTable"}`,
			wantCategory: debuglog.CategoryComponentLifecycle,
			wantLevel:    debuglog.LevelDebug,
		},
		{
			name:         "component error",
			body:         `{"type":"component_error","component":"UserTable","error":"nil deref"}`,
			wantCategory: debuglog.CategoryComponentLifecycle,
			wantLevel:    debuglog.LevelError,
		},
		{
			name:         "api call",
			body:         `{"type":"api_call","method":"GET","url":"/api/users","status":200,"duration_ms":35}`,
			wantCategory: debuglog.CategoryAPICall,
			wantLevel:    debuglog.LevelInfo,
		},
		{
			name:         "user action",
			body:         `{"type":"user_action","action":"click","component":"SaveButton"}`,
			wantCategory: debuglog.CategoryUserAction,
			wantLevel:    debuglog.LevelInfo,
		},
		{
			name:         "route change",
			body:         `{"type":"route_change","from":"/a","to":"/b"}`,
			wantCategory: debuglog.CategoryNavigation,
			wantLevel:    debuglog.LevelInfo,
		},
		{
			name:         "auth event",
			body:         `{"type":"auth_event","event":"login","user_id":"u-1","success":true}`,
			wantCategory: debuglog.CategoryAuthentication,
			wantLevel:    debuglog.LevelInfo,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, logger, _ := newTestHandler(t)
			logger.SetLevel(context.Background(), debuglog.LevelVerbose)

			rec := httptest.NewRecorder()
			h.IngestEvent(rec, postJSON("/api/v1/events", tt.body))

			if rec.Code != http.StatusAccepted {
				t.Fatalf("status = %d, want 202\nbody: %s", rec.Code, rec.Body.String())
			}

			logs := logger.Logs(debuglog.Filter{})
			if len(logs) != 1 {
				t.Fatalf("recorded %d entries, want 1", len(logs))
			}
			if logs[0].Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", logs[0].Category, tt.wantCategory)
			}
			if logs[0].Level != tt.wantLevel {
				t.Errorf("level = %v, want %v", logs[0].Level, tt.wantLevel)
			}
		})
	}
}

func TestIngestEvent_TypeFromPath(t *testing.T) {
	t.Parallel()

	h, logger, _ := newTestHandler(t)

	r := chi.NewRouter()
	r.Post("/api/v1/events/{type}", h.IngestEvent)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, postJSON("/api/v1/events/route_change", `{"from":"/a","to":"/b"}`))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202\nbody: %s", rec.Code, rec.Body.String())
	}
	logs := logger.Logs(debuglog.Filter{})
	if len(logs) != 1 || logs[0].Category != debuglog.CategoryNavigation {
		t.Errorf("recorded = %+v", logs)
	}
}

func TestIngestEvent_Invalid(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"unknown type", `{"type":"telemetry_burst"}`},
		{"missing type", `{"url":"/x"}`},
		{"page_load without url", `{"type":"page_load"}`},
		{"component_mount without component", `{"type":"component_mount"}`},
		{"api_call without method", `{"type":"api_call","url":"/x"}`},
		{"auth_event without event", `{"type":"auth_event","user_id":"u"}`},
		{"malformed json", `{"type":`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			h.IngestEvent(rec, postJSON("/api/v1/events", tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
