// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/tabularius/internal/debuglog"
	"github.com/tomtom215/tabularius/internal/logging"
	"github.com/tomtom215/tabularius/internal/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS log_entries (
    ts         TIMESTAMP NOT NULL,
    level      VARCHAR NOT NULL,
    rank       INTEGER NOT NULL,
    category   VARCHAR NOT NULL,
    component  VARCHAR,
    route      VARCHAR,
    session_id VARCHAR NOT NULL
)`

// Config controls the mirror.
type Config struct {
	// Path is the DuckDB file; ":memory:" for tests.
	Path string

	// QueueSize bounds the pending-entry channel. A full queue drops
	// the entry rather than blocking the logger.
	QueueSize int

	// BatchSize and FlushInterval control the insert batcher.
	BatchSize     int
	FlushInterval time.Duration
}

// Defaults fills zero fields with working values.
func (c Config) Defaults() Config {
	if c.Path == "" {
		c.Path = ":memory:"
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 2048
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 128
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 2 * time.Second
	}
	return c
}

// Store is the DuckDB mirror. It implements debuglog.Sink; Write only
// enqueues, the Serve loop performs the inserts.
type Store struct {
	cfg   Config
	db    *sql.DB
	queue chan debuglog.Entry
}

// New opens the database and creates the schema.
func New(cfg Config) (*Store, error) {
	cfg = cfg.Defaults()

	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{
		cfg:   cfg,
		db:    db,
		queue: make(chan debuglog.Entry, cfg.QueueSize),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name implements debuglog.Sink.
func (s *Store) Name() string { return "analytics" }

// Write implements debuglog.Sink. Drop-on-full: the mirror is lossy
// under pressure by design of the pipeline, never a bottleneck.
func (s *Store) Write(e debuglog.Entry) error {
	select {
	case s.queue <- e:
		return nil
	default:
		metrics.AnalyticsDrops.Inc()
		return nil
	}
}

// Serve consumes the queue and batch-inserts until cancellation. It
// satisfies the supervisor's service contract.
func (s *Store) Serve(ctx context.Context) error {
	log := logging.WithComponent("analytics")
	log.Info().Int("batch_size", s.cfg.BatchSize).Msg("Analytics consumer started")

	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]debuglog.Entry, 0, s.cfg.BatchSize)
	for {
		select {
		case <-ctx.Done():
			if len(batch) > 0 {
				s.insert(batch)
			}
			return ctx.Err()

		case e := <-s.queue:
			batch = append(batch, e)
			if len(batch) >= s.cfg.BatchSize {
				s.insert(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				s.insert(batch)
				batch = batch[:0]
			}
		}
	}
}

// String identifies the service in supervisor logs.
func (s *Store) String() string { return "analytics-consumer" }

// Flush drains the queue and inserts everything pending. Tests use this
// instead of running Serve.
func (s *Store) Flush() error {
	batch := make([]debuglog.Entry, 0, len(s.queue))
	for {
		select {
		case e := <-s.queue:
			batch = append(batch, e)
		default:
			if len(batch) == 0 {
				return nil
			}
			return s.insertBatch(batch)
		}
	}
}

func (s *Store) insert(batch []debuglog.Entry) {
	if err := s.insertBatch(batch); err != nil {
		log := logging.WithComponent("analytics")
		log.Warn().
			Err(err).
			Int("entries", len(batch)).
			Msg("Analytics batch insert failed")
	}
}

func (s *Store) insertBatch(batch []debuglog.Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(
		`INSERT INTO log_entries (ts, level, rank, category, component, route, session_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.Exec(
			e.Timestamp, e.Level.String(), int(e.Level),
			e.Category, e.Component, e.Route, e.SessionID,
		); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	metrics.AnalyticsInserts.Add(float64(len(batch)))
	return nil
}
