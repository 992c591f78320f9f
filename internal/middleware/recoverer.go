// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tabularius/internal/debuglog"
	"github.com/tomtom215/tabularius/internal/logging"
)

// Recoverer converts a handler panic into a captured fault and a JSON
// 500 response. The fault flows through the dispatcher into the
// diagnostic log as an ERROR "Global Error" entry, so a crashing
// handler leaves the same trail a crashing page would.
func Recoverer(dispatcher *debuglog.FaultDispatcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					// The server uses this sentinel internally; re-panic.
					panic(rec)
				}

				stack := string(debug.Stack())
				logging.Error().
					Str("request_id", GetRequestID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("panic", fmt.Sprintf("%v", rec)).
					Msg("recovered panic in handler")

				if dispatcher != nil {
					dispatcher.Dispatch(debuglog.Fault{
						Kind:    debuglog.FaultPanic,
						Message: fmt.Sprintf("%v", rec),
						Stack:   stack,
						Source:  r.Method + " " + r.URL.Path,
					})
				}

				writePanicResponse(w)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func writePanicResponse(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)

	body := map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"code":    "INTERNAL_ERROR",
			"message": "internal server error",
		},
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("failed to write panic response")
	}
}
