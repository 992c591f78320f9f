// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package shipper

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tabularius/internal/debuglog"
	"github.com/tomtom215/tabularius/internal/logging"
	"github.com/tomtom215/tabularius/internal/metrics"
)

// Transport delivers one batch of entries to the collector.
type Transport interface {
	// Name identifies the transport in logs.
	Name() string

	// Send delivers the batch. It may block on rate limiting; the
	// shipper calls it only from its own goroutine.
	Send(ctx context.Context, batch []debuglog.Entry) error

	// Close releases transport resources.
	Close() error
}

// Shipper implements debuglog.Sink over a bounded queue and a batching
// flush loop. Write never blocks: a full queue drops the entry.
type Shipper struct {
	cfg       Config
	transport Transport
	queue     chan debuglog.Entry
	active    bool
}

// New creates a shipper. Active is true only in production deployments
// with the network sink enabled; an inactive shipper accepts and
// discards entries so the sink wiring stays uniform.
func New(cfg Config, transport Transport, active bool) *Shipper {
	cfg = cfg.Defaults()
	return &Shipper{
		cfg:       cfg,
		transport: transport,
		queue:     make(chan debuglog.Entry, cfg.BufferSize),
		active:    active,
	}
}

// Name implements debuglog.Sink.
func (s *Shipper) Name() string { return "network" }

// Active reports whether the shipper forwards entries or is in
// placeholder mode.
func (s *Shipper) Active() bool { return s.active }

// Write implements debuglog.Sink. It enqueues without blocking; a full
// queue drops the newest entry with a metric and an operational warn.
func (s *Shipper) Write(e debuglog.Entry) error {
	if !s.active {
		return nil
	}
	select {
	case s.queue <- e:
		metrics.SetShipperQueueDepth(len(s.queue))
		return nil
	default:
		metrics.RecordShipperDrop(1)
		return errors.New("shipper queue full, entry dropped")
	}
}

// QueueDepth returns the current queue occupancy, for readiness checks.
func (s *Shipper) QueueDepth() int { return len(s.queue) }

// Healthy reports whether the shipper can accept entries. A placeholder
// shipper is always healthy; an active one is unhealthy only while its
// transport's circuit breaker is open.
func (s *Shipper) Healthy() bool {
	if !s.active {
		return true
	}
	type breakerStater interface {
		BreakerState() gobreaker.State
	}
	if bs, ok := s.transport.(breakerStater); ok {
		return bs.BreakerState() != gobreaker.StateOpen
	}
	return true
}

// Serve runs the batching flush loop until the context is cancelled. It
// satisfies the supervisor's service contract; an inactive shipper just
// parks until shutdown.
func (s *Shipper) Serve(ctx context.Context) error {
	log := logging.WithComponent("shipper")

	if !s.active {
		log.Debug().Msg("Shipper in placeholder mode, not forwarding")
		<-ctx.Done()
		return ctx.Err()
	}

	log.Info().
		Str("transport", s.transport.Name()).
		Int("batch_size", s.cfg.BatchSize).
		Dur("flush_interval", s.cfg.FlushInterval).
		Msg("Shipper started")

	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]debuglog.Entry, 0, s.cfg.BatchSize)
	for {
		select {
		case <-ctx.Done():
			if len(batch) > 0 {
				// Best-effort final flush with a detached deadline.
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				s.flush(flushCtx, batch)
				cancel()
			}
			return ctx.Err()

		case e := <-s.queue:
			metrics.SetShipperQueueDepth(len(s.queue))
			batch = append(batch, e)
			if len(batch) >= s.cfg.BatchSize {
				s.flush(ctx, batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

// String identifies the service in supervisor logs.
func (s *Shipper) String() string { return "shipper" }

// flush delivers one batch and records the outcome. Failed batches are
// dropped: the collector is a best-effort mirror, not a source of truth.
func (s *Shipper) flush(ctx context.Context, batch []debuglog.Entry) {
	log := logging.WithComponent("shipper")
	err := s.transport.Send(ctx, batch)
	switch {
	case err == nil:
		metrics.RecordShipperBatch("success")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordShipperBatch("rejected")
		log.Warn().
			Int("entries", len(batch)).
			Msg("Batch rejected by open circuit breaker")
	default:
		metrics.RecordShipperBatch("failure")
		log.Warn().
			Err(err).
			Int("entries", len(batch)).
			Msg("Batch delivery failed")
	}
}

// Close closes the transport.
func (s *Shipper) Close() error {
	if s.transport == nil {
		return nil
	}
	return s.transport.Close()
}
