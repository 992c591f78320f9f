// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/tabularius/internal/metrics"
)

// LevelCount is one row of the counts-by-level summary.
type LevelCount struct {
	Level string `json:"level"`
	Count int64  `json:"count"`
}

// CategoryCount is one row of the top-categories summary.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// ErrorRateBucket is one per-minute error-rate sample.
type ErrorRateBucket struct {
	Minute    time.Time `json:"minute"`
	Total     int64     `json:"total"`
	Errors    int64     `json:"errors"`
	ErrorRate float64   `json:"errorRate"`
}

// Stats is the full summary served by the stats endpoint.
type Stats struct {
	TotalEntries  int64             `json:"totalEntries"`
	ByLevel       []LevelCount      `json:"byLevel"`
	TopCategories []CategoryCount   `json:"topCategories"`
	ErrorRate     []ErrorRateBucket `json:"errorRate"`
	Window        time.Duration     `json:"-"`
}

// CountsByLevel returns entry counts per level, most severe first.
func (s *Store) CountsByLevel(ctx context.Context) ([]LevelCount, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT level, COUNT(*) FROM log_entries GROUP BY level, rank ORDER BY rank`)
	metrics.AnalyticsQueryDuration.WithLabelValues("counts_by_level").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("counts by level: %w", err)
	}
	defer rows.Close()

	counts := []LevelCount{}
	for rows.Next() {
		var c LevelCount
		if err := rows.Scan(&c.Level, &c.Count); err != nil {
			return nil, fmt.Errorf("scan level count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// TopCategories returns the n most frequent categories.
func (s *Store) TopCategories(ctx context.Context, n int) ([]CategoryCount, error) {
	if n <= 0 {
		n = 10
	}
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) AS c FROM log_entries
		 GROUP BY category ORDER BY c DESC, category LIMIT ?`, n)
	metrics.AnalyticsQueryDuration.WithLabelValues("top_categories").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	defer rows.Close()

	counts := []CategoryCount{}
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ErrorRatePerMinute buckets the trailing window into minutes and
// reports the error share of each bucket.
func (s *Store) ErrorRatePerMinute(ctx context.Context, window time.Duration) ([]ErrorRateBucket, error) {
	if window <= 0 {
		window = time.Hour
	}
	since := time.Now().Add(-window)

	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT date_trunc('minute', ts) AS minute,
		        COUNT(*) AS total,
		        COUNT(*) FILTER (WHERE rank = 0) AS errors
		 FROM log_entries
		 WHERE ts >= ?
		 GROUP BY minute ORDER BY minute`, since)
	metrics.AnalyticsQueryDuration.WithLabelValues("error_rate").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("error rate: %w", err)
	}
	defer rows.Close()

	buckets := []ErrorRateBucket{}
	for rows.Next() {
		var b ErrorRateBucket
		if err := rows.Scan(&b.Minute, &b.Total, &b.Errors); err != nil {
			return nil, fmt.Errorf("scan error bucket: %w", err)
		}
		if b.Total > 0 {
			b.ErrorRate = float64(b.Errors) / float64(b.Total)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// Summary assembles the full stats document for the trailing window.
func (s *Store) Summary(ctx context.Context, window time.Duration, topN int) (*Stats, error) {
	byLevel, err := s.CountsByLevel(ctx)
	if err != nil {
		return nil, err
	}
	topCategories, err := s.TopCategories(ctx, topN)
	if err != nil {
		return nil, err
	}
	errorRate, err := s.ErrorRatePerMinute(ctx, window)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range byLevel {
		total += c.Count
	}
	return &Stats{
		TotalEntries:  total,
		ByLevel:       byLevel,
		TopCategories: topCategories,
		ErrorRate:     errorRate,
		Window:        window,
	}, nil
}
