// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package api

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tabularius/internal/auth"
	"github.com/tomtom215/tabularius/internal/debuglog"
	"github.com/tomtom215/tabularius/internal/store"
	"github.com/tomtom215/tabularius/internal/websocket"
)

const testSessionID = "sess-test"

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.Options{InMemory: true})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestLogger(t *testing.T, opts ...debuglog.Option) *debuglog.Logger {
	t.Helper()
	cfg := debuglog.DefaultConfig(debuglog.EnvDevelopment)
	cfg.EnableConsole = false
	opts = append([]debuglog.Option{debuglog.WithSessionID(testSessionID)}, opts...)
	return debuglog.New(context.Background(), cfg, opts...)
}

func newTestAuth(t *testing.T) *auth.Middleware {
	t.Helper()
	m, err := auth.NewMiddleware(auth.ModeNone, nil, nil, "admin")
	if err != nil {
		t.Fatalf("auth.NewMiddleware: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

// newTestHandler builds a handler over an in-memory store with storage
// persistence wired into the logger, no analytics, and no shipper.
func newTestHandler(t *testing.T) (*Handler, *debuglog.Logger, *store.Store) {
	t.Helper()

	s := newTestStore(t)
	logger := newTestLogger(t,
		debuglog.WithEntryStore(s),
		debuglog.WithConfigStore(s),
	)
	h := NewHandler(logger, s, nil, websocket.NewHub(), newTestAuth(t), nil)
	return h, logger, s
}

// decodeEnvelope unmarshals the response envelope, failing the test on
// malformed JSON.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

// dataMap returns the envelope's data block as a map.
func dataMap(t *testing.T, resp APIResponse) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is %T, want object", resp.Data)
	}
	return m
}
