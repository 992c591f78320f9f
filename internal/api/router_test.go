// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/tomtom215/tabularius/internal/auth"
	"github.com/tomtom215/tabularius/internal/authz"
	"github.com/tomtom215/tabularius/internal/debuglog"
	"github.com/tomtom215/tabularius/internal/middleware"
	"github.com/tomtom215/tabularius/internal/websocket"
)

// testRouter builds the full route tree over an in-memory store.
func testRouter(t *testing.T, authMiddleware *auth.Middleware) (http.Handler, *debuglog.Logger, *websocket.Hub) {
	t.Helper()

	s := newTestStore(t)
	hub := websocket.NewHub()
	logger := newTestLogger(t,
		debuglog.WithEntryStore(s),
		debuglog.WithConfigStore(s),
		debuglog.WithMirror(hub),
		debuglog.WithRouteProvider(middleware.GetClientRoute),
	)

	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	t.Cleanup(enforcer.Close)

	handler := NewHandler(logger, s, nil, hub, authMiddleware, nil)
	router := NewRouter(
		handler,
		NewChiMiddleware(DefaultChiMiddlewareConfig()),
		authz.NewMiddleware(enforcer),
		debuglog.NewFaultDispatcher(),
	)
	return router.Setup(), logger, hub
}

func TestRouter_OpenEndpoints(t *testing.T) {
	t.Parallel()

	r, _, _ := testRouter(t, newTestAuth(t))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestRouter_RequestIDHeader(t *testing.T) {
	t.Parallel()

	r, _, _ := testRouter(t, newTestAuth(t))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	// An upstream-assigned ID is honored.
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "upstream-7")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "upstream-7" {
		t.Errorf("X-Request-ID = %q, want upstream-7", got)
	}
}

func TestRouter_NoneModeFullFlow(t *testing.T) {
	t.Parallel()

	r, logger, _ := testRouter(t, newTestAuth(t))

	// Ingest with a client route header.
	req := postJSON("/api/v1/logs", `{"level":"INFO","category":"Navigation","message":"arrived"}`)
	req.Header.Set("X-Client-Route", "/dashboard")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("ingest = %d\nbody: %s", rec.Code, rec.Body.String())
	}

	logs := logger.Logs(debuglog.Filter{})
	if len(logs) != 1 {
		t.Fatalf("buffer = %d entries", len(logs))
	}
	if logs[0].Route != "/dashboard" {
		t.Errorf("route = %q, want /dashboard", logs[0].Route)
	}

	// Anonymous requests act as admin in none mode: clear succeeds.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/logs", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("clear = %d, want 200", rec.Code)
	}
}

func TestRouter_JWTModeAuthFlow(t *testing.T) {
	t.Parallel()

	authMiddleware := newJWTAuth(t)
	r, _, _ := testRouter(t, authMiddleware)

	// No token: 401.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated = %d, want 401", rec.Code)
	}

	// Login for an admin token.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, postJSON("/api/v1/auth/login", `{"username":"admin","password":"correct horse battery"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	token, _ := dataMap(t, decodeEnvelope(t, rec))["token"].(string)
	if token == "" {
		t.Fatal("no token")
	}

	withToken := func(method, path, tok string) *http.Request {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		return req
	}

	// Admin may clear.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, withToken(http.MethodDelete, "/api/v1/logs", token))
	if rec.Code != http.StatusOK {
		t.Errorf("admin clear = %d, want 200", rec.Code)
	}

	// A viewer token reads but cannot clear.
	jwtManager, err := auth.NewJWTManager(testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	viewerToken, err := jwtManager.GenerateToken("alice", "viewer")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, withToken(http.MethodGet, "/api/v1/logs", viewerToken))
	if rec.Code != http.StatusOK {
		t.Errorf("viewer read = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, withToken(http.MethodDelete, "/api/v1/logs", viewerToken))
	if rec.Code != http.StatusForbidden {
		t.Errorf("viewer clear = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, withToken(http.MethodPut, "/api/v1/config/level", viewerToken))
	if rec.Code != http.StatusForbidden {
		t.Errorf("viewer config mutation = %d, want 403", rec.Code)
	}
}

func TestRouter_LiveTail(t *testing.T) {
	t.Parallel()

	r, logger, hub := testRouter(t, newTestAuth(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.Serve(ctx) }()

	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/logs/tail"
	conn, resp, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v (resp: %+v)", err, resp)
	}
	defer conn.Close() //nolint:errcheck

	// Wait for the hub to register the client before logging.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	logger.Info(context.Background(), "Navigation", "tail me", nil, "")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string         `json:"type"`
		Data debuglog.Entry `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if msg.Type != websocket.MessageTypeEntry {
		t.Errorf("frame type = %q", msg.Type)
	}
	if msg.Data.Message != "tail me" {
		t.Errorf("frame entry = %+v", msg.Data)
	}
}
