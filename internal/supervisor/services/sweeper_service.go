// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package services

import (
	"context"
	"time"

	"github.com/tomtom215/tabularius/internal/logging"
)

// SessionSweeper is the slice of *store.Store the sweeper needs.
type SessionSweeper interface {
	Sweep(ctx context.Context, retention time.Duration, liveSessionID string) (int, error)
}

// RetentionSweeper prunes persisted sessions whose newest entry has
// aged past the retention window. The live session is exempt; the
// logger that owns it is still appending.
type RetentionSweeper struct {
	store         SessionSweeper
	retention     time.Duration
	interval      time.Duration
	liveSessionID string
}

// NewRetentionSweeper builds the sweeper. A zero interval means hourly
// sweeps; retention <= 0 makes every sweep a no-op, which the caller
// should avoid by not scheduling the service at all.
func NewRetentionSweeper(store SessionSweeper, retention, interval time.Duration, liveSessionID string) *RetentionSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RetentionSweeper{
		store:         store,
		retention:     retention,
		interval:      interval,
		liveSessionID: liveSessionID,
	}
}

// Serve implements suture.Service. One sweep runs immediately so a
// process restarted after long downtime does not wait a full interval
// to reclaim space. Sweep failures are logged, not returned: badger
// hiccups should not restart the data layer.
func (r *RetentionSweeper) Serve(ctx context.Context) error {
	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *RetentionSweeper) sweep(ctx context.Context) {
	removed, err := r.store.Sweep(ctx, r.retention, r.liveSessionID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.Warn().Err(err).Msg("Retention sweep failed")
		return
	}
	if removed > 0 {
		logging.Info().
			Int("sessions", removed).
			Dur("retention", r.retention).
			Msg("Expired sessions swept")
	}
}

func (r *RetentionSweeper) String() string { return "retention-sweeper" }
