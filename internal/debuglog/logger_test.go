// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package debuglog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func testConfig() Config {
	cfg := DefaultConfig(EnvDevelopment)
	cfg.EnableConsole = false
	cfg.EnableStorage = false
	return cfg
}

func TestLog_LevelFiltering(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Level = LevelWarn
	logger := New(context.Background(), cfg)

	logger.Info(context.Background(), "test", "filtered out", nil, "")
	logger.Debug(context.Background(), "test", "also filtered", nil, "")
	logger.Warn(context.Background(), "test", "recorded", nil, "")
	logger.Error(context.Background(), "test", "also recorded", nil, "")

	logs := logger.Logs(Filter{})
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}
	for _, e := range logs {
		if e.Level > LevelWarn {
			t.Errorf("entry %q has rank %d above configured minimum", e.Message, e.Level)
		}
	}
}

func TestLog_CategoryFiltering(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Categories = []string{"API Call", "Navigation"}
	logger := New(context.Background(), cfg)

	logger.Info(context.Background(), "API Call", "recorded", nil, "")
	logger.Info(context.Background(), "User Action", "not recorded", nil, "")
	logger.Info(context.Background(), "Navigation", "recorded too", nil, "")

	logs := logger.Logs(Filter{})
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}

	// Recording uses exact matching; "API" alone must not be admitted.
	logger.Info(context.Background(), "API", "partial name", nil, "")
	if got := len(logger.Logs(Filter{})); got != 2 {
		t.Errorf("partial category name was recorded: %d entries", got)
	}
}

func TestLog_AllSentinelAdmitsEverything(t *testing.T) {
	t.Parallel()

	logger := New(context.Background(), testConfig())
	logger.Info(context.Background(), "anything", "msg", nil, "")
	logger.Info(context.Background(), "something else", "msg", nil, "")

	if got := len(logger.Logs(Filter{})); got != 2 {
		t.Errorf("expected 2 entries under the all sentinel, got %d", got)
	}
}

func TestLog_BoundedBufferFIFO(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxStorageEntries = 5
	logger := New(context.Background(), cfg)

	for i := 0; i < 8; i++ {
		logger.Info(context.Background(), "test", string(rune('a'+i)), nil, "")
	}

	logs := logger.Logs(Filter{})
	if len(logs) != 5 {
		t.Fatalf("expected buffer trimmed to 5, got %d", len(logs))
	}
	// The retained entries are exactly the most recent five, in order.
	want := []string{"d", "e", "f", "g", "h"}
	for i, e := range logs {
		if e.Message != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, e.Message, want[i])
		}
	}
}

func TestLog_RedactsSensitiveKeys(t *testing.T) {
	t.Parallel()

	logger := New(context.Background(), testConfig())
	logger.Info(context.Background(), "test", "msg", map[string]interface{}{
		"password": "x",
		"nested":   map[string]interface{}{"token": "y"},
		"ok":       "z",
	}, "")

	logs := logger.Logs(Filter{})
	if len(logs) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(logs))
	}

	var data map[string]interface{}
	if err := json.Unmarshal(logs[0].Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data["password"] != RedactedPlaceholder {
		t.Errorf("password not redacted: %v", data["password"])
	}
	nested, ok := data["nested"].(map[string]interface{})
	if !ok {
		t.Fatalf("nested payload missing: %v", data["nested"])
	}
	if nested["token"] != RedactedPlaceholder {
		t.Errorf("nested token not redacted: %v", nested["token"])
	}
	if data["ok"] != "z" {
		t.Errorf("benign field changed: %v", data["ok"])
	}
}

func TestLog_NonSerializableDataNeverThrows(t *testing.T) {
	t.Parallel()

	logger := New(context.Background(), testConfig())

	type cyclic struct {
		Self *cyclic `json:"self"`
	}
	c := &cyclic{}
	c.Self = c

	logger.Info(context.Background(), "test", "cycle", c, "")
	logger.Info(context.Background(), "test", "func", map[string]interface{}{"fn": func() {}}, "")

	logs := logger.Logs(Filter{})
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}
	for _, e := range logs {
		var marker struct {
			Error    string `json:"error"`
			Original string `json:"original"`
		}
		if err := json.Unmarshal(e.Data, &marker); err != nil {
			t.Fatalf("entry %q: data is not the marker shape: %v", e.Message, err)
		}
		if marker.Error != "Failed to sanitize data" {
			t.Errorf("entry %q: unexpected marker error %q", e.Message, marker.Error)
		}
	}
}

func TestLogs_ConjunctiveFilters(t *testing.T) {
	t.Parallel()

	logger := New(context.Background(), testConfig())
	logger.Error(context.Background(), "API Call", "api failure", nil, "LoginForm")
	logger.Info(context.Background(), "API Call", "api ok", nil, "Dashboard")
	logger.Info(context.Background(), "Navigation", "nav", nil, "LoginForm")

	maxLevel := LevelError
	got := logger.Logs(Filter{MaxLevel: &maxLevel, Category: "api", Component: "login"})
	if len(got) != 1 || got[0].Message != "api failure" {
		t.Fatalf("conjunctive filter returned %+v", got)
	}

	// Substring matches are case-insensitive for queries.
	got = logger.Logs(Filter{Category: "API CALL"})
	if len(got) != 2 {
		t.Errorf("case-insensitive category filter returned %d entries", len(got))
	}

	got = logger.Logs(Filter{Since: time.Now().Add(time.Hour)})
	if len(got) != 0 {
		t.Errorf("future since filter returned %d entries", len(got))
	}
}

func TestExport_RoundTrip(t *testing.T) {
	t.Parallel()

	logger := New(context.Background(), testConfig())

	// Export must succeed on an empty buffer with logs == [].
	raw, err := logger.Export()
	if err != nil {
		t.Fatalf("export empty: %v", err)
	}
	var doc ExportDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if doc.Logs == nil {
		t.Error("empty export serialized logs as null")
	}
	if doc.SessionID != logger.SessionID() {
		t.Errorf("export session %q != logger session %q", doc.SessionID, logger.SessionID())
	}

	logger.Info(context.Background(), "test", "one", nil, "")
	logger.Warn(context.Background(), "test", "two", nil, "")

	raw, err = logger.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(doc.Logs) != 2 || doc.Logs[0].Message != "one" || doc.Logs[1].Message != "two" {
		t.Errorf("export logs do not match buffer: %+v", doc.Logs)
	}
	if doc.ExportedAt.IsZero() {
		t.Error("exportedAt missing")
	}
}

func TestSessionID_StableAcrossCalls(t *testing.T) {
	t.Parallel()

	logger := New(context.Background(), testConfig())
	logger.Info(context.Background(), "test", "first", nil, "")
	logger.Error(context.Background(), "test", "second", nil, "")

	logs := logger.Logs(Filter{})
	if logs[0].SessionID == "" || logs[0].SessionID != logs[1].SessionID {
		t.Errorf("session IDs differ: %q vs %q", logs[0].SessionID, logs[1].SessionID)
	}
	if logs[0].SessionID != logger.SessionID() {
		t.Error("entry session ID differs from logger session ID")
	}
}

func TestSetLevel_TakesEffectImmediately(t *testing.T) {
	t.Parallel()

	logger := New(context.Background(), testConfig())
	logger.SetLevel(context.Background(), LevelError)

	logger.Info(context.Background(), "test", "should be dropped", nil, "")
	logger.Error(context.Background(), "test", "should appear", nil, "")

	logs := logger.Logs(Filter{})
	if len(logs) != 1 || logs[0].Message != "should appear" {
		t.Fatalf("level change not immediate: %+v", logs)
	}
}

func TestClear_IsDestructiveAndIdempotent(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	logger := New(context.Background(), testConfigWithStorage(), WithEntryStore(store))
	logger.Info(context.Background(), "test", "msg", nil, "")

	if store.sessionLen(logger.SessionID()) != 1 {
		t.Fatalf("entry not persisted")
	}

	logger.Clear(context.Background())
	if got := len(logger.Logs(Filter{})); got != 0 {
		t.Errorf("buffer not empty after clear: %d", got)
	}
	if store.hasSession(logger.SessionID()) {
		t.Error("durable session key still present after clear")
	}

	// Idempotent: clearing again is a no-op.
	logger.Clear(context.Background())
	if got := len(logger.Logs(Filter{})); got != 0 {
		t.Errorf("second clear changed state: %d", got)
	}
}

func TestEnableDisableCategory(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Categories = []string{"API Call"}
	logger := New(context.Background(), cfg)

	logger.EnableCategory(context.Background(), "Navigation")
	logger.EnableCategory(context.Background(), "Navigation") // no-op, already present

	got := logger.Config().Categories
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %v", got)
	}

	logger.DisableCategory(context.Background(), "API Call")
	logger.DisableCategory(context.Background(), "not present") // no-op

	got = logger.Config().Categories
	if len(got) != 1 || got[0] != "Navigation" {
		t.Fatalf("expected [Navigation], got %v", got)
	}

	// EnableCategory under the all sentinel is a no-op.
	logger.SetCategories(context.Background(), []string{CategoryAll})
	logger.EnableCategory(context.Background(), "Navigation")
	if got := logger.Config().Categories; len(got) != 1 || got[0] != CategoryAll {
		t.Fatalf("all sentinel lost: %v", got)
	}
}

func TestDisableCategory_LastCategoryRecordsNothing(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Categories = []string{"API Call"}
	logger := New(context.Background(), cfg)

	logger.DisableCategory(context.Background(), "API Call")

	// Emptying the set must not widen recording to everything.
	logger.Info(context.Background(), "API Call", "was disabled", nil, "")
	logger.Info(context.Background(), "Navigation", "never enabled", nil, "")
	if got := len(logger.Logs(Filter{})); got != 0 {
		t.Fatalf("recorded %d entries with every category disabled", got)
	}
	if got := logger.Config().Categories; len(got) != 0 {
		t.Fatalf("categories = %v, want empty set", got)
	}

	// Re-enabling resumes recording for that category only.
	logger.EnableCategory(context.Background(), "API Call")
	logger.Info(context.Background(), "API Call", "back on", nil, "")
	logger.Info(context.Background(), "Navigation", "still off", nil, "")

	logs := logger.Logs(Filter{})
	if len(logs) != 1 || logs[0].Message != "back on" {
		t.Errorf("logs after re-enable = %+v", logs)
	}
}

func TestSinkIsolation_FailingStoreDoesNotBlockOtherSinks(t *testing.T) {
	t.Parallel()

	failing := &failingStore{err: errors.New("quota exceeded")}
	mirror := &captureSink{}
	logger := New(context.Background(), testConfigWithStorage(),
		WithEntryStore(failing), WithMirror(mirror))

	logger.Info(context.Background(), "test", "still delivered", nil, "")

	if got := mirror.count(); got != 1 {
		t.Errorf("mirror did not receive entry despite store failure: %d", got)
	}
	if got := len(logger.Logs(Filter{})); got != 1 {
		t.Errorf("buffer missing entry despite store failure: %d", got)
	}
}

func TestLog_ConcurrentWithConfigMutation(t *testing.T) {
	t.Parallel()

	logger := New(context.Background(), testConfig())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				logger.Info(context.Background(), "test", "concurrent", nil, "")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			logger.SetLevel(context.Background(), LevelInfo)
			logger.SetCategories(context.Background(), []string{CategoryAll})
		}
	}()
	wg.Wait()

	// Every observed config must be internally consistent.
	cfg := logger.Config()
	if len(cfg.Categories) == 0 || cfg.MaxStorageEntries <= 0 {
		t.Errorf("torn config observed: %+v", cfg)
	}
}

func TestConfigStore_PersistedConfigWins(t *testing.T) {
	t.Parallel()

	stored := testConfig()
	stored.Level = LevelVerbose
	cs := &fakeConfigStore{cfg: stored, ok: true}

	logger := New(context.Background(), testConfig(), WithConfigStore(cs))
	if got := logger.Config().Level; got != LevelVerbose {
		t.Errorf("persisted config not applied: level %s", got)
	}

	logger.SetLevel(context.Background(), LevelError)
	if cs.saved == nil || cs.saved.Level != LevelError {
		t.Error("config mutation not persisted")
	}
}

func testConfigWithStorage() Config {
	cfg := testConfig()
	cfg.EnableStorage = true
	return cfg
}

// fakeStore is an in-memory EntryStore for tests.
type fakeStore struct {
	mu       sync.Mutex
	sessions map[string][]Entry
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string][]Entry)}
}

func (s *fakeStore) AppendEntry(_ context.Context, sessionID string, e Entry, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := append(s.sessions[sessionID], e)
	if len(entries) > max {
		entries = entries[len(entries)-max:]
	}
	s.sessions[sessionID] = entries
	return nil
}

func (s *fakeStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *fakeStore) sessionLen(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions[id])
}

func (s *fakeStore) hasSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	return ok
}

type failingStore struct{ err error }

func (s *failingStore) AppendEntry(context.Context, string, Entry, int) error { return s.err }
func (s *failingStore) DeleteSession(context.Context, string) error           { return s.err }

type captureSink struct {
	mu      sync.Mutex
	entries []Entry
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Write(e Entry) error {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type fakeConfigStore struct {
	cfg   Config
	ok    bool
	saved *Config
}

func (s *fakeConfigStore) SaveConfig(_ context.Context, cfg Config) error {
	s.saved = &cfg
	return nil
}

func (s *fakeConfigStore) LoadConfig(context.Context) (Config, bool, error) {
	return s.cfg, s.ok, nil
}
