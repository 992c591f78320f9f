// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package authz

import (
	"net/http"

	"github.com/tomtom215/tabularius/internal/auth"
	"github.com/tomtom215/tabularius/internal/logging"
)

// Middleware enforces the embedded policy against authenticated claims.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// AuthorizeRequest derives the action from the HTTP method and the
// object from the request path, then enforces the policy against the
// caller's role. Must run after authentication.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		if claims == nil {
			http.Error(w, "Forbidden: no authentication context", http.StatusForbidden)
			return
		}

		action := methodToAction(r.Method)
		object := r.URL.Path

		allowed, err := m.enforcer.EnforceRole(claims.Role, object, action)
		if err != nil {
			logging.Error().Err(err).Str("role", claims.Role).Str("object", object).Msg("authorization error")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !allowed {
			logging.Warn().
				Str("username", claims.Username).
				Str("role", claims.Role).
				Str("object", object).
				Str("action", action).
				Msg("access denied")
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePermission enforces a fixed object/action pair regardless of
// the request path. Used for routes whose path does not name the
// protected resource.
func (m *Middleware) RequirePermission(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.ClaimsFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Forbidden: no authentication context", http.StatusForbidden)
				return
			}

			allowed, err := m.enforcer.EnforceRole(claims.Role, object, action)
			if err != nil {
				logging.Error().Err(err).Str("role", claims.Role).Str("object", object).Msg("authorization error")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if !allowed {
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// methodToAction maps HTTP methods to policy actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}
