// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/tabularius/internal/debuglog"
	"github.com/tomtom215/tabularius/internal/metrics"
)

// Sweep deletes session keys whose newest entry is older than the
// retention window. The live session is never swept: the process that
// owns it is still appending, and Clear handles its removal. Returns
// the number of sessions removed.
func (s *Store) Sweep(ctx context.Context, retention time.Duration, liveSessionID string) (int, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-retention)

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}

	removed := 0
	for _, sessionID := range sessions {
		if sessionID == liveSessionID {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		entries, err := s.LoadSession(ctx, sessionID)
		if err != nil {
			return removed, fmt.Errorf("sweep: %w", err)
		}
		if !expired(entries, cutoff) {
			continue
		}
		if err := s.DeleteSession(ctx, sessionID); err != nil {
			return removed, fmt.Errorf("sweep: %w", err)
		}
		removed++
	}

	metrics.RecordSessionsSwept(removed)
	return removed, nil
}

// expired reports whether the session's newest entry predates the
// cutoff. An empty session is expired: it holds nothing worth keeping.
func expired(entries []debuglog.Entry, cutoff time.Time) bool {
	if len(entries) == 0 {
		return true
	}
	newest := entries[0].Timestamp
	for _, e := range entries[1:] {
		if e.Timestamp.After(newest) {
			newest = e.Timestamp
		}
	}
	return newest.Before(cutoff)
}
