// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package debuglog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/tabularius/internal/logging"
	"github.com/tomtom215/tabularius/internal/metrics"
)

// EntryStore persists entries per session. Implemented by the badger
// store; the logger depends only on this interface so the store package
// can import the Entry type without a cycle.
type EntryStore interface {
	// AppendEntry appends e to the session's persisted collection and
	// trims it to max entries, oldest first, in one transaction.
	AppendEntry(ctx context.Context, sessionID string, e Entry, max int) error

	// DeleteSession removes the session's persisted collection.
	DeleteSession(ctx context.Context, sessionID string) error
}

// ConfigStore persists the logger configuration across restarts.
type ConfigStore interface {
	SaveConfig(ctx context.Context, cfg Config) error

	// LoadConfig returns the persisted config and whether one existed.
	LoadConfig(ctx context.Context) (Config, bool, error)
}

// RouteProvider derives the client navigation path from the call
// context. The HTTP layer installs one that reads the request-scoped
// route header value; outside a request it returns "".
type RouteProvider func(ctx context.Context) string

// Option configures a Logger at construction.
type Option func(*Logger)

// WithConsoleSink installs the console sink.
func WithConsoleSink(s *ConsoleSink) Option {
	return func(l *Logger) { l.console = s }
}

// WithEntryStore installs the durable storage sink.
func WithEntryStore(store EntryStore) Option {
	return func(l *Logger) { l.storage = store }
}

// WithConfigStore installs configuration persistence.
func WithConfigStore(store ConfigStore) Option {
	return func(l *Logger) { l.configStore = store }
}

// WithNetworkSink installs the network sink (the shipper). The sink is
// consulted only when the config enables network delivery.
func WithNetworkSink(s Sink) Option {
	return func(l *Logger) { l.network = s }
}

// WithMirror registers an always-on sink that receives every recorded
// entry regardless of the config toggles. The live-tail hub and the
// analytics consumer are mirrors: they observe the stream but are not
// part of the configured sink set.
func WithMirror(s Sink) Option {
	return func(l *Logger) { l.mirrors = append(l.mirrors, s) }
}

// WithRouteProvider installs the route derivation function.
func WithRouteProvider(p RouteProvider) Option {
	return func(l *Logger) { l.route = p }
}

// WithSessionID overrides the generated session identifier. Tests use
// this for deterministic storage keys.
func WithSessionID(id string) Option {
	return func(l *Logger) { l.sessionID = id }
}

// Logger is the diagnostic event logger. One instance exists per
// process, constructed by the composition root; there is no package
// global. All methods are safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	cfg     *Config // copy-on-write: replaced wholesale, never mutated
	buffer  []Entry
	console *ConsoleSink
	storage EntryStore
	network Sink
	mirrors []Sink

	sessionID   string
	configStore ConfigStore
	route       RouteProvider
	op          opLogger
}

// New constructs a Logger. The supplied config is merged with any
// persisted one: a stored config wins over the compiled profile, and
// subsequent runtime mutations are persisted back.
func New(ctx context.Context, cfg Config, opts ...Option) *Logger {
	l := &Logger{
		sessionID: uuid.New().String(),
		op:        newOpLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.configStore != nil {
		if stored, ok, err := l.configStore.LoadConfig(ctx); err != nil {
			l.op.warn(err, "failed to load persisted logger config")
		} else if ok {
			cfg = stored
		}
	}
	normalized := cfg.normalize()
	l.cfg = &normalized

	return l
}

// SessionID returns the identifier shared by all entries of this
// process lifetime.
func (l *Logger) SessionID() string { return l.sessionID }

// Config returns a copy of the current configuration.
func (l *Logger) Config() Config {
	l.mu.Lock()
	cfg := l.cfg.clone()
	l.mu.Unlock()
	return cfg
}

// Log records one diagnostic entry. It is a no-op when the level rank
// exceeds the configured minimum or the category is not admitted.
// Log never panics and never returns an error: sanitization failures
// degrade to the marker payload and sink failures are isolated.
func (l *Logger) Log(ctx context.Context, level Level, category, message string, data interface{}, component string) {
	defer func() {
		if r := recover(); r != nil {
			l.op.warnf("log call recovered from panic: %v", r)
		}
	}()

	l.mu.Lock()
	cfg := l.cfg
	l.mu.Unlock()

	if level > cfg.Level {
		metrics.RecordEntryDropped("level")
		return
	}
	if !cfg.recordsCategory(category) {
		metrics.RecordEntryDropped("category")
		return
	}

	raw, redacted := sanitizeData(data)
	metrics.RecordRedactedFields(redacted)
	if data != nil && isFailureMarker(raw) {
		metrics.RecordSanitizeFailure()
	}

	entry := Entry{
		Timestamp: time.Now(),
		Level:     level,
		Category:  category,
		Message:   message,
		Data:      raw,
		Component: component,
		SessionID: l.sessionID,
	}
	if l.route != nil {
		entry.Route = l.route(ctx)
	}

	l.mu.Lock()
	l.buffer = append(l.buffer, entry)
	if over := len(l.buffer) - cfg.MaxStorageEntries; over > 0 {
		l.buffer = append(l.buffer[:0], l.buffer[over:]...)
		for i := 0; i < over; i++ {
			metrics.RecordBufferEviction()
		}
	}
	metrics.SetBufferSize(len(l.buffer))
	l.mu.Unlock()

	metrics.RecordEntry(level.String(), category)
	l.deliver(ctx, cfg, entry)
}

// deliver fans the entry out to every enabled sink. Each sink is
// isolated: a failure is counted and warned once, and the remaining
// sinks still receive the entry.
func (l *Logger) deliver(ctx context.Context, cfg *Config, entry Entry) {
	if cfg.EnableConsole && l.console != nil {
		l.writeSink(l.console, entry)
	}

	if cfg.EnableStorage && l.storage != nil {
		if err := l.appendStored(ctx, entry, cfg.MaxStorageEntries); err != nil {
			metrics.RecordSinkFailure("storage")
			l.op.warn(err, "storage sink delivery failed")
		} else {
			metrics.RecordSinkDelivery("storage")
		}
	}

	if cfg.EnableNetwork && l.network != nil {
		l.writeSink(l.network, entry)
	}

	for _, m := range l.mirrors {
		l.writeSink(m, entry)
	}
}

func (l *Logger) writeSink(s Sink, entry Entry) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordSinkFailure(s.Name())
			l.op.warnf("sink %s panicked: %v", s.Name(), r)
		}
	}()
	if err := s.Write(entry); err != nil {
		metrics.RecordSinkFailure(s.Name())
		l.op.warn(err, "sink "+s.Name()+" delivery failed")
		return
	}
	metrics.RecordSinkDelivery(s.Name())
}

func (l *Logger) appendStored(ctx context.Context, entry Entry, max int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errPanic{r}
		}
	}()
	return l.storage.AppendEntry(ctx, l.sessionID, entry, max)
}

// Error records an ERROR entry.
func (l *Logger) Error(ctx context.Context, category, message string, data interface{}, component string) {
	l.Log(ctx, LevelError, category, message, data, component)
}

// Warn records a WARN entry.
func (l *Logger) Warn(ctx context.Context, category, message string, data interface{}, component string) {
	l.Log(ctx, LevelWarn, category, message, data, component)
}

// Info records an INFO entry.
func (l *Logger) Info(ctx context.Context, category, message string, data interface{}, component string) {
	l.Log(ctx, LevelInfo, category, message, data, component)
}

// Debug records a DEBUG entry.
func (l *Logger) Debug(ctx context.Context, category, message string, data interface{}, component string) {
	l.Log(ctx, LevelDebug, category, message, data, component)
}

// Verbose records a VERBOSE entry.
func (l *Logger) Verbose(ctx context.Context, category, message string, data interface{}, component string) {
	l.Log(ctx, LevelVerbose, category, message, data, component)
}

// Logs returns a snapshot of the buffer matching the filter. The
// returned slice is a copy; it never aliases the live buffer. A zero
// filter returns the whole buffer. Logs is a pure read.
func (l *Logger) Logs(filter Filter) []Entry {
	l.mu.Lock()
	snapshot := make([]Entry, len(l.buffer))
	copy(snapshot, l.buffer)
	l.mu.Unlock()

	out := snapshot[:0]
	for _, e := range snapshot {
		if filter.MaxLevel != nil && e.Level > *filter.MaxLevel {
			continue
		}
		if filter.Category != "" && !containsFold(e.Category, filter.Category) {
			continue
		}
		if filter.Component != "" && !containsFold(e.Component, filter.Component) {
			continue
		}
		if !filter.Since.IsZero() && e.Timestamp.Before(filter.Since) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Export serializes {sessionId, config, logs, exportedAt}. It succeeds
// on an empty buffer: logs is [] rather than null.
func (l *Logger) Export() ([]byte, error) {
	l.mu.Lock()
	doc := ExportDocument{
		SessionID:  l.sessionID,
		Config:     l.cfg.clone(),
		Logs:       make([]Entry, len(l.buffer)),
		ExportedAt: time.Now(),
	}
	copy(doc.Logs, l.buffer)
	l.mu.Unlock()

	return json.Marshal(doc)
}

// Clear empties the in-memory buffer and removes the durable key for
// the current session. Clearing an already-empty logger is a no-op.
func (l *Logger) Clear(ctx context.Context) {
	l.mu.Lock()
	l.buffer = nil
	l.mu.Unlock()
	metrics.SetBufferSize(0)

	if l.storage != nil {
		if err := l.storage.DeleteSession(ctx, l.sessionID); err != nil {
			metrics.RecordSinkFailure("storage")
			l.op.warn(err, "failed to delete persisted session")
		}
	}
}

// SetLevel replaces the minimum severity and persists the config. The
// change applies to the next Log call.
func (l *Logger) SetLevel(ctx context.Context, level Level) {
	l.mutateConfig(ctx, func(cfg *Config) {
		if level.Valid() {
			cfg.Level = level
		}
	})
}

// SetCategories replaces the recorded category set and persists the
// config. An empty set is normalized to the "all" sentinel.
func (l *Logger) SetCategories(ctx context.Context, categories []string) {
	l.mutateConfig(ctx, func(cfg *Config) {
		if len(categories) == 0 {
			cfg.Categories = []string{CategoryAll}
			return
		}
		cfg.Categories = append([]string(nil), categories...)
	})
}

// EnableCategory admits a category. It is a no-op when the category is
// already present or the set is the "all" sentinel.
func (l *Logger) EnableCategory(ctx context.Context, category string) {
	l.mutateConfig(ctx, func(cfg *Config) {
		if cfg.recordsCategory(category) {
			return
		}
		cfg.Categories = append(cfg.Categories, category)
	})
}

// DisableCategory removes a category by value; removing an absent
// category is a no-op. Disabling the last remaining category leaves an
// empty set that records nothing; SetCategories or EnableCategory
// resumes recording.
func (l *Logger) DisableCategory(ctx context.Context, category string) {
	l.mutateConfig(ctx, func(cfg *Config) {
		out := cfg.Categories[:0]
		for _, c := range cfg.Categories {
			if c != category {
				out = append(out, c)
			}
		}
		cfg.Categories = out
	})
}

// mutateConfig performs the copy-on-write swap: clone, mutate the clone,
// publish the new pointer under the mutex, persist. Readers holding the
// old pointer keep a consistent view.
func (l *Logger) mutateConfig(ctx context.Context, mutate func(*Config)) {
	l.mu.Lock()
	next := l.cfg.clone()
	mutate(&next)
	next = next.normalize()
	l.cfg = &next
	l.mu.Unlock()

	if l.configStore != nil {
		if err := l.configStore.SaveConfig(ctx, next); err != nil {
			l.op.warn(err, "failed to persist logger config")
		}
	}
}

// Close flushes nothing (all sinks are synchronous from the logger's
// view) and exists for test teardown symmetry. Normal operation never
// tears the logger down.
func (l *Logger) Close() error { return nil }

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func isFailureMarker(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var m struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return false
	}
	return m.Error == "Failed to sanitize data"
}

type errPanic struct{ v interface{} }

func (e errPanic) Error() string { return "panic: " + coerceString(e.v) }

// opLogger wraps the operational zerolog logger. The diagnostic logger
// only ever emits operational WARNs, and only for sink or persistence
// failures, so consumers of the diagnostic stream never see them.
type opLogger struct {
	warn  func(err error, msg string)
	warnf func(format string, args ...interface{})
}

func newOpLogger() opLogger {
	log := logging.WithComponent("debuglog")
	return opLogger{
		warn: func(err error, msg string) {
			log.Warn().Err(err).Msg(msg)
		},
		warnf: func(format string, args ...interface{}) {
			log.Warn().Msgf(format, args...)
		},
	}
}

