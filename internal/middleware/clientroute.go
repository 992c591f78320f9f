// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package middleware

import (
	"context"
	"net/http"
)

const clientRouteKey contextKey = "client_route"

// ClientRouteHeader carries the client's active route (the page it was
// on when the event happened) alongside ingested events.
const ClientRouteHeader = "X-Client-Route"

// ClientRoute copies the X-Client-Route header into the request context
// so entries recorded while handling the request are stamped with the
// route they originated from.
func ClientRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Header.Get(ClientRouteHeader)
		if route == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), clientRouteKey, route)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientRoute extracts the client route from context, or "" when the
// request carried none.
func GetClientRoute(ctx context.Context) string {
	if route, ok := ctx.Value(clientRouteKey).(string); ok {
		return route
	}
	return ""
}
