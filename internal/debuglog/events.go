// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package debuglog

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Categories used by the specialized event methods. The two fault
// categories keep the names the browser clients already filter on.
const (
	CategoryPageLifecycle      = "Page Lifecycle"
	CategoryComponentLifecycle = "Component Lifecycle"
	CategoryAPICall            = "API Call"
	CategoryUserAction         = "User Action"
	CategoryNavigation         = "Navigation"
	CategoryAuthentication     = "Authentication"
	CategoryPerformance        = "Performance"
	CategoryMemory             = "Memory"
	CategoryGlobalError        = "Global Error"
	CategoryUnhandledRejection = "Unhandled Promise Rejection"
)

// PageLoad records a page load with its timing.
func (l *Logger) PageLoad(ctx context.Context, url string, loadTime time.Duration) {
	l.Info(ctx, CategoryPageLifecycle, "Page loaded", map[string]interface{}{
		"url":          url,
		"load_time_ms": loadTime.Milliseconds(),
	}, "")
}

// PageError records a page-level error.
func (l *Logger) PageError(ctx context.Context, url, errMsg, stack string) {
	l.Error(ctx, CategoryPageLifecycle, "Page error", map[string]interface{}{
		"url":   url,
		"error": errMsg,
		"stack": stack,
	}, "")
}

// ComponentMount records a component mount.
func (l *Logger) ComponentMount(ctx context.Context, component string, props map[string]interface{}) {
	l.Debug(ctx, CategoryComponentLifecycle, "Component mounted",
		SanitizeUserPayload(props), component)
}

// ComponentUnmount records a component unmount.
func (l *Logger) ComponentUnmount(ctx context.Context, component string) {
	l.Debug(ctx, CategoryComponentLifecycle, "Component unmounted", nil, component)
}

// ComponentError records an error raised inside a component.
func (l *Logger) ComponentError(ctx context.Context, component, errMsg, stack string) {
	l.Error(ctx, CategoryComponentLifecycle, "Component error", map[string]interface{}{
		"error": errMsg,
		"stack": stack,
	}, component)
}

// APICall records an outbound API call. Calls that returned a status of
// 400 or above log at ERROR; everything else logs at INFO.
func (l *Logger) APICall(ctx context.Context, method, url string, status int, duration time.Duration) {
	level := LevelInfo
	if status >= 400 {
		level = LevelError
	}
	l.Log(ctx, level, CategoryAPICall, fmt.Sprintf("%s %s", method, url), map[string]interface{}{
		"method":      method,
		"url":         url,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	}, "")
}

// UserAction records a user interaction. The payload passes the stricter
// user-payload sanitizer: known-sensitive fields are deleted and an
// email field is masked, before the usual key-based redaction.
func (l *Logger) UserAction(ctx context.Context, action, component string, payload map[string]interface{}) {
	l.Info(ctx, CategoryUserAction, action, SanitizeUserPayload(payload), component)
}

// RouteChange records a client navigation.
func (l *Logger) RouteChange(ctx context.Context, from, to string) {
	l.Info(ctx, CategoryNavigation, "Route changed", map[string]interface{}{
		"from": from,
		"to":   to,
	}, "")
}

// AuthEvent records an authentication event. The user identifier is
// replaced by its hashed correlation label before it enters the entry.
func (l *Logger) AuthEvent(ctx context.Context, event, userID string, success bool) {
	l.Info(ctx, CategoryAuthentication, event, map[string]interface{}{
		"user":    HashUserID(userID),
		"success": success,
	}, "")
}

// StartTimer records a DEBUG "Timer started" entry and returns a stop
// function. The stop function records an INFO "Timer completed" entry
// with the elapsed duration and returns it.
//
// The stop function is idempotent: the first invocation measures, and
// later invocations return the first duration without logging again.
func (l *Logger) StartTimer(ctx context.Context, name string) func() time.Duration {
	start := time.Now()
	l.Debug(ctx, CategoryPerformance, "Timer started", map[string]interface{}{
		"timer": name,
	}, "")

	var once sync.Once
	var elapsed time.Duration
	return func() time.Duration {
		once.Do(func() {
			elapsed = time.Since(start)
			l.Info(ctx, CategoryPerformance, "Timer completed", map[string]interface{}{
				"timer":       name,
				"duration_ms": elapsed.Milliseconds(),
			}, "")
		})
		return elapsed
	}
}

// LogMemoryUsage records current heap statistics in MB at INFO level.
// It never errors; runtime.ReadMemStats is always available.
func (l *Logger) LogMemoryUsage(ctx context.Context, usageContext string) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	const mb = 1024 * 1024
	l.Info(ctx, CategoryMemory, "Memory usage", map[string]interface{}{
		"context":        usageContext,
		"heap_alloc_mb":  float64(m.HeapAlloc) / mb,
		"heap_sys_mb":    float64(m.HeapSys) / mb,
		"total_alloc_mb": float64(m.TotalAlloc) / mb,
		"num_gc":         m.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}, "")
}
