// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package services

import (
	"context"
	"time"
)

// MemoryRecorder is the slice of *debuglog.Logger the sampler needs.
type MemoryRecorder interface {
	LogMemoryUsage(ctx context.Context, usageContext string)
}

// MemorySampler records heap statistics as Memory-category entries on
// a fixed interval, giving the diagnostic stream a baseline to compare
// leak suspicions against.
type MemorySampler struct {
	logger   MemoryRecorder
	interval time.Duration
}

// NewMemorySampler builds the sampler. A zero interval means a sample
// every five minutes; callers that want sampling off should not
// schedule the service.
func NewMemorySampler(logger MemoryRecorder, interval time.Duration) *MemorySampler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &MemorySampler{logger: logger, interval: interval}
}

// Serve implements suture.Service. The first sample lands immediately
// so a fresh process has a baseline before the first interval expires.
func (m *MemorySampler) Serve(ctx context.Context) error {
	m.logger.LogMemoryUsage(ctx, "sampler start")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.logger.LogMemoryUsage(ctx, "periodic sample")
		}
	}
}

func (m *MemorySampler) String() string { return "memory-sampler" }
