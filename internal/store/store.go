// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tabularius/internal/debuglog"
	"github.com/tomtom215/tabularius/internal/metrics"
)

const (
	// sessionKeyPrefix prefixes every per-session entry collection. The
	// full key is "debug_log_<sessionId>".
	sessionKeyPrefix = "debug_log_"

	// configKey is the fixed key holding the persisted logger config.
	configKey = "debug_logger_config"
)

// Options configures the store.
type Options struct {
	// Dir is the badger data directory. Ignored when InMemory is set.
	Dir string

	// InMemory opens a non-persistent database, for tests.
	InMemory bool

	// SyncWrites forces an fsync per write. Diagnostic entries tolerate
	// losing the last few writes on a crash, so this defaults off.
	SyncWrites bool
}

// Store is the BadgerDB-backed persistence layer. It implements both
// debuglog.EntryStore and debuglog.ConfigStore.
type Store struct {
	db *badger.DB
}

// New opens the database and returns the store. The caller owns Close.
func New(opts Options) (*Store, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(opts.Dir)
	}
	badgerOpts.SyncWrites = opts.SyncWrites
	badgerOpts.Logger = nil // Suppress BadgerDB internal logs

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *badger.DB { return s.db }

func sessionKey(sessionID string) []byte {
	return []byte(sessionKeyPrefix + sessionID)
}

// AppendEntry appends e to the session's collection and trims it to max
// entries, oldest first, inside one transaction. Implements
// debuglog.EntryStore.
func (s *Store) AppendEntry(ctx context.Context, sessionID string, e debuglog.Entry, max int) error {
	start := time.Now()
	err := s.db.Update(func(txn *badger.Txn) error {
		var entries []debuglog.Entry

		item, err := txn.Get(sessionKey(sessionID))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// First entry of the session.
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entries)
			}); err != nil {
				return fmt.Errorf("decode session %s: %w", sessionID, err)
			}
		}

		entries = append(entries, e)
		if max > 0 && len(entries) > max {
			entries = entries[len(entries)-max:]
		}

		data, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", sessionID, err)
		}
		return txn.Set(sessionKey(sessionID), data)
	})
	metrics.RecordStoreOperation("append_entry", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// LoadSession returns the persisted entries for a session. A missing key
// yields an empty, non-nil slice.
func (s *Store) LoadSession(ctx context.Context, sessionID string) ([]debuglog.Entry, error) {
	start := time.Now()
	entries := []debuglog.Entry{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(sessionID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entries)
		})
	})
	metrics.RecordStoreOperation("load_session", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return entries, nil
}

// DeleteSession removes the session's collection. Deleting an absent
// session is a no-op. Implements debuglog.EntryStore.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	start := time.Now()
	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(sessionKey(sessionID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	metrics.RecordStoreOperation("delete_session", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// ListSessions returns the session identifiers with persisted entries,
// in key order.
func (s *Store) ListSessions(ctx context.Context) ([]string, error) {
	start := time.Now()
	var sessions []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			sessions = append(sessions, strings.TrimPrefix(key, sessionKeyPrefix))
		}
		return nil
	})
	metrics.RecordStoreOperation("list_sessions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// SaveConfig persists the logger configuration under the fixed key.
// Implements debuglog.ConfigStore.
func (s *Store) SaveConfig(ctx context.Context, cfg debuglog.Config) error {
	start := time.Now()
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(configKey), data)
	})
	metrics.RecordStoreOperation("save_config", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// LoadConfig returns the persisted configuration and whether one existed.
// Implements debuglog.ConfigStore.
func (s *Store) LoadConfig(ctx context.Context) (debuglog.Config, bool, error) {
	start := time.Now()
	var cfg debuglog.Config
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(configKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cfg)
		})
	})
	metrics.RecordStoreOperation("load_config", time.Since(start), err)
	if err != nil {
		return debuglog.Config{}, false, fmt.Errorf("load config: %w", err)
	}
	return cfg, found, nil
}
