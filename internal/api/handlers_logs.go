// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tabularius/internal/debuglog"
)

// maxIngestBody bounds an ingest request. Payloads are capped per-entry
// during sanitization; this bound is for the request as a whole.
const maxIngestBody = 1 << 20 // 1 MiB

// maxIngestBatch bounds the number of entries in one array ingest.
const maxIngestBatch = 500

// ingestEntry is one client-submitted diagnostic entry.
type ingestEntry struct {
	Level     string          `json:"level"`
	Category  string          `json:"category"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Component string          `json:"component,omitempty"`
}

func (e *ingestEntry) validate() error {
	if _, err := debuglog.ParseLevel(e.Level); err != nil {
		return err
	}
	if e.Category == "" {
		return fmt.Errorf("category is required")
	}
	if e.Message == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}

// IngestLogs accepts one entry or an array of entries. Entries the
// active configuration filters out are still accepted: filtering is the
// configured behavior, not a client error.
//
// @Summary Ingest diagnostic entries
// @Tags logs
// @Accept json
// @Produce json
// @Success 202 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/v1/logs [post]
func (h *Handler) IngestLogs(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	body := http.MaxBytesReader(w, r.Body, maxIngestBody)
	raw, err := io.ReadAll(body)
	if err != nil {
		rw.BadRequest("request body too large or unreadable")
		return
	}

	entries, err := decodeIngest(raw)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if len(entries) == 0 {
		rw.BadRequest("no entries supplied")
		return
	}
	if len(entries) > maxIngestBatch {
		rw.BadRequest(fmt.Sprintf("batch exceeds %d entries", maxIngestBatch))
		return
	}

	for i := range entries {
		if err := entries[i].validate(); err != nil {
			rw.ValidationError("invalid entry", map[string]interface{}{
				"index": i,
				"error": err.Error(),
			})
			return
		}
	}

	ctx := r.Context()
	for _, e := range entries {
		level, _ := debuglog.ParseLevel(e.Level)
		var data interface{}
		if len(e.Data) > 0 {
			data = json.RawMessage(e.Data)
		}
		h.logger.Log(ctx, level, e.Category, e.Message, data, e.Component)
	}

	rw.Accepted(map[string]interface{}{"accepted": len(entries)})
}

// decodeIngest accepts either a single entry object or an array.
func decodeIngest(raw []byte) ([]ingestEntry, error) {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			var entries []ingestEntry
			if err := json.Unmarshal(raw, &entries); err != nil {
				return nil, fmt.Errorf("invalid entry array: %w", err)
			}
			return entries, nil
		default:
			var entry ingestEntry
			if err := json.Unmarshal(raw, &entry); err != nil {
				return nil, fmt.Errorf("invalid entry: %w", err)
			}
			return []ingestEntry{entry}, nil
		}
	}
	return nil, fmt.Errorf("empty body")
}

// QueryLogs returns a filtered snapshot of the in-memory buffer.
//
// @Summary Query buffered entries
// @Tags logs
// @Produce json
// @Param level query string false "Maximum severity (ERROR..VERBOSE)"
// @Param category query string false "Category substring match"
// @Param component query string false "Component substring match"
// @Param since query string false "RFC 3339 lower bound"
// @Param limit query int false "Maximum entries returned, most recent kept"
// @Success 200 {object} APIResponse
// @Router /api/v1/logs [get]
func (h *Handler) QueryLogs(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filter, limit, err := parseLogQuery(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	logs := h.logger.Logs(filter)
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}

	rw.SuccessWithCount(logs, len(logs))
}

func parseLogQuery(r *http.Request) (debuglog.Filter, int, error) {
	var filter debuglog.Filter
	q := r.URL.Query()

	if s := q.Get("level"); s != "" {
		level, err := debuglog.ParseLevel(s)
		if err != nil {
			return filter, 0, err
		}
		filter.MaxLevel = &level
	}
	filter.Category = q.Get("category")
	filter.Component = q.Get("component")

	if s := q.Get("since"); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, 0, fmt.Errorf("invalid since timestamp: %v", err)
		}
		filter.Since = since
	}

	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return filter, 0, fmt.Errorf("invalid limit %q", s)
		}
		limit = n
	}

	return filter, limit, nil
}

// ExportLogs serves the full session document as a JSON download.
//
// @Summary Export the session log document
// @Tags logs
// @Produce json
// @Success 200 {object} debuglog.ExportDocument
// @Router /api/v1/logs/export [get]
func (h *Handler) ExportLogs(w http.ResponseWriter, r *http.Request) {
	doc, err := h.logger.Export()
	if err != nil {
		NewResponseWriter(w, r).InternalError("export failed")
		return
	}

	filename := fmt.Sprintf("debug_log_%s.json", h.logger.SessionID())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// ClearLogs empties the buffer and the persisted session. Admin only.
//
// @Summary Clear buffered and persisted entries
// @Tags logs
// @Produce json
// @Success 200 {object} APIResponse
// @Router /api/v1/logs [delete]
func (h *Handler) ClearLogs(w http.ResponseWriter, r *http.Request) {
	h.logger.Clear(r.Context())
	NewResponseWriter(w, r).Success(map[string]interface{}{"cleared": true})
}

// LogStats serves aggregate statistics from the analytics mirror.
//
// @Summary Aggregate entry statistics
// @Tags logs
// @Produce json
// @Param window query string false "Error-rate window (Go duration, default 1h)"
// @Param top query int false "Top-category count (default 10)"
// @Success 200 {object} APIResponse
// @Failure 503 {object} APIResponse
// @Router /api/v1/logs/stats [get]
func (h *Handler) LogStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.analytics == nil {
		rw.ServiceUnavailable("analytics mirror is disabled")
		return
	}

	window := time.Hour
	if s := r.URL.Query().Get("window"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			rw.BadRequest(fmt.Sprintf("invalid window %q", s))
			return
		}
		window = d
	}

	topN := 10
	if s := r.URL.Query().Get("top"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			rw.BadRequest(fmt.Sprintf("invalid top %q", s))
			return
		}
		topN = n
	}

	stats, err := h.analytics.Summary(r.Context(), window, topN)
	if err != nil {
		rw.InternalError("stats query failed")
		return
	}

	rw.Success(stats)
}

// ListSessions lists the session IDs with persisted entries.
//
// @Summary List persisted sessions
// @Tags sessions
// @Produce json
// @Success 200 {object} APIResponse
// @Router /api/v1/sessions [get]
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	sessions, err := h.store.ListSessions(r.Context())
	if err != nil {
		rw.StorageError(err)
		return
	}

	rw.SuccessWithCount(sessions, len(sessions))
}

// SessionLogs returns the persisted entries of one session, which may
// be a previous process lifetime.
//
// @Summary Read one persisted session
// @Tags sessions
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/v1/logs/{sessionID} [get]
func (h *Handler) SessionLogs(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	sessionID := chi.URLParam(r, "sessionID")

	entries, err := h.store.LoadSession(r.Context(), sessionID)
	if err != nil {
		rw.StorageError(err)
		return
	}
	if len(entries) == 0 {
		rw.NotFound("no entries for session " + sessionID)
		return
	}

	rw.SuccessWithCount(entries, len(entries))
}

// DeleteSession removes one persisted session. Admin only.
//
// @Summary Delete one persisted session
// @Tags sessions
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} APIResponse
// @Router /api/v1/logs/{sessionID} [delete]
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.store.DeleteSession(r.Context(), sessionID); err != nil {
		rw.StorageError(err)
		return
	}

	rw.Success(map[string]interface{}{"deleted": sessionID})
}
