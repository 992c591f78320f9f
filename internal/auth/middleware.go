// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/tabularius/internal/logging"
	"github.com/tomtom215/tabularius/internal/metrics"
)

type contextKey string

// ClaimsContextKey carries the authenticated *Claims through the request.
const ClaimsContextKey contextKey = "claims"

// Mode selects the authentication scheme.
type Mode string

const (
	ModeNone  Mode = "none"
	ModeBasic Mode = "basic"
	ModeJWT   Mode = "jwt"
)

// Middleware provides authentication middleware for the API router.
type Middleware struct {
	jwtManager           *JWTManager
	basicAuthManager     *BasicAuthManager
	mode                 Mode
	basicAuthDefaultRole string
	adminUsername        string
	loginLimiter         *RateLimiter
}

// NewMiddleware creates the authentication middleware. Mode "none"
// disables authentication entirely and logs a prominent warning, since
// that exposes every recorded diagnostic entry to anyone who can reach
// the port.
func NewMiddleware(mode Mode, jwtManager *JWTManager, basicAuthManager *BasicAuthManager, adminUsername string) (*Middleware, error) {
	switch mode {
	case ModeNone:
		logging.Warn().Msg("authentication is DISABLED - do not run this configuration outside local development")
	case ModeBasic:
		if basicAuthManager == nil {
			return nil, fmt.Errorf("auth mode %q requires basic auth credentials", mode)
		}
	case ModeJWT:
		if jwtManager == nil {
			return nil, fmt.Errorf("auth mode %q requires a JWT secret", mode)
		}
		if basicAuthManager == nil {
			return nil, fmt.Errorf("auth mode %q requires login credentials", mode)
		}
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}

	m := &Middleware{
		jwtManager:           jwtManager,
		basicAuthManager:     basicAuthManager,
		mode:                 mode,
		basicAuthDefaultRole: "viewer",
		adminUsername:        adminUsername,
		loginLimiter:         NewRateLimiter(5, time.Minute),
	}
	go m.loginLimiter.startCleanup(5 * time.Minute)

	return m, nil
}

// Mode returns the configured authentication mode.
func (m *Middleware) Mode() Mode { return m.mode }

// Close stops the login limiter's cleanup goroutine.
func (m *Middleware) Close() { m.loginLimiter.Stop() }

// Authenticate enforces the configured authentication mode and stores
// the resulting *Claims in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == ModeNone {
			// Anonymous requests act as admin; there is no identity to scope.
			ctx := context.WithValue(r.Context(), ClaimsContextKey, &Claims{Username: "anonymous", Role: "admin"})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		authHeader := r.Header.Get("Authorization")

		if m.mode == ModeBasic {
			m.handleBasicAuth(w, r, next, authHeader)
			return
		}

		m.handleJWTAuth(w, r, next, authHeader)
	})
}

// handleBasicAuth processes Basic Authentication requests
func (m *Middleware) handleBasicAuth(w http.ResponseWriter, r *http.Request, next http.Handler, authHeader string) {
	if authHeader == "" {
		m.sendBasicAuthChallenge(w, "Unauthorized: authentication required")
		return
	}

	username, err := m.basicAuthManager.ValidateCredentials(authHeader)
	if err != nil {
		logging.Warn().Err(err).Msg("basic auth validation failed")
		metrics.RecordAuthAttempt("failure")
		m.sendBasicAuthChallenge(w, "Unauthorized: invalid credentials")
		return
	}

	metrics.RecordAuthAttempt("success")
	ctx := context.WithValue(r.Context(), ClaimsContextKey, m.claimsFor(username))
	next.ServeHTTP(w, r.WithContext(ctx))
}

func (m *Middleware) sendBasicAuthChallenge(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", m.basicAuthManager.GetWWWAuthenticateHeader())
	http.Error(w, message, http.StatusUnauthorized)
}

// claimsFor assigns the role for a credential-authenticated user. The
// configured admin username gets admin; everyone else is a viewer.
func (m *Middleware) claimsFor(username string) *Claims {
	role := m.basicAuthDefaultRole
	if m.adminUsername != "" && username == m.adminUsername {
		role = "admin"
	}
	return &Claims{Username: username, Role: role}
}

// handleJWTAuth processes JWT Authentication requests
func (m *Middleware) handleJWTAuth(w http.ResponseWriter, r *http.Request, next http.Handler, authHeader string) {
	token, err := extractJWTToken(r, authHeader)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		logging.Warn().Err(err).Msg("token validation failed")
		metrics.RecordAuthAttempt("failure")
		http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
		return
	}

	metrics.RecordAuthAttempt("success")
	ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// extractJWTToken extracts the token from the Authorization header or,
// for browser clients (including the live-tail WebSocket upgrade, which
// cannot set headers), the "token" cookie.
func extractJWTToken(r *http.Request, authHeader string) (string, error) {
	if authHeader == "" {
		cookie, err := r.Cookie("token")
		if err != nil {
			return "", fmt.Errorf("unauthorized: missing token")
		}
		return cookie.Value, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("unauthorized: invalid authorization header")
	}

	return parts[1], nil
}

// ClaimsFromContext returns the authenticated claims, or nil for an
// unauthenticated request.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}

// Login verifies a username/password pair and issues a JWT. Only valid
// in jwt mode.
func (m *Middleware) Login(username, password string) (string, *Claims, error) {
	if m.mode != ModeJWT {
		return "", nil, fmt.Errorf("login is only available in jwt mode")
	}
	if !m.basicAuthManager.ValidatePassword(username, password) {
		metrics.RecordAuthAttempt("failure")
		return "", nil, fmt.Errorf("invalid username or password")
	}

	claims := m.claimsFor(username)
	token, err := m.jwtManager.GenerateToken(claims.Username, claims.Role)
	if err != nil {
		return "", nil, err
	}

	metrics.RecordAuthAttempt("success")
	return token, claims, nil
}

// LoginRateLimit guards the login endpoint with a strict per-IP limit,
// independent of the router-wide rate limiter.
func (m *Middleware) LoginRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.loginLimiter.Allow(clientIP(r)) {
			http.Error(w, "Too many login attempts", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimiter implements per-IP rate limiting with automatic cleanup
type RateLimiter struct {
	limiters  map[string]*rateLimiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	stopClean chan struct{}
	stopOnce  sync.Once
}

// rateLimiterEntry wraps a rate limiter with last access time
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter creates a limiter allowing reqsPerWindow requests per
// window for each distinct IP.
func NewRateLimiter(reqsPerWindow int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*rateLimiterEntry),
		rate:      rate.Every(window / time.Duration(reqsPerWindow)),
		burst:     reqsPerWindow,
		stopClean: make(chan struct{}),
	}
}

// Allow checks if a request from the given IP is allowed
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	entry, exists := rl.limiters[ip]
	if !exists {
		entry = &rateLimiterEntry{
			limiter:    rate.NewLimiter(rl.rate, rl.burst),
			lastAccess: time.Now(),
		}
		rl.limiters[ip] = entry
	} else {
		entry.lastAccess = time.Now()
	}
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

// startCleanup periodically removes stale rate limiters
func (rl *RateLimiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopClean:
			return
		}
	}
}

// cleanup removes rate limiters that haven't been accessed in the last hour
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := time.Now().Add(-1 * time.Hour)
	for ip, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, ip)
		}
	}
}

// Stop stops the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopClean) })
}
