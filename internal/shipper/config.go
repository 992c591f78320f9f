// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package shipper

import "time"

// Config controls queueing and batching.
type Config struct {
	// BufferSize bounds the entry queue. A full queue drops the newest
	// entry rather than blocking the logging caller.
	BufferSize int

	// BatchSize flushes a batch as soon as it reaches this many entries.
	BatchSize int

	// FlushInterval flushes a partial batch after this long.
	FlushInterval time.Duration
}

// Defaults fills zero fields with working values.
func (c Config) Defaults() Config {
	if c.BufferSize <= 0 {
		c.BufferSize = 1024
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 64
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 5 * time.Second
	}
	return c
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	// URL receives POSTed JSON batches.
	URL string

	// Timeout bounds one delivery attempt.
	Timeout time.Duration

	// FailureThreshold is the consecutive-failure count that opens the
	// circuit breaker.
	FailureThreshold uint32

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration

	// RatePerSecond and Burst bound outbound batch frequency.
	RatePerSecond float64
	Burst         int
}

// Defaults fills zero fields with working values.
func (c HTTPConfig) Defaults() HTTPConfig {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = 10
	}
	if c.Burst <= 0 {
		c.Burst = 20
	}
	return c
}

// NATSConfig configures the JetStream transport (build tag nats).
type NATSConfig struct {
	// URL is the broker address. Ignored when Embedded is set.
	URL string

	// SubjectPrefix prefixes the per-level subject:
	// "<prefix>.<lowercase level>".
	SubjectPrefix string

	// Embedded starts an in-process nats-server and connects to it.
	Embedded bool

	// StoreDir is the embedded server's JetStream directory.
	StoreDir string

	// Host and Port bind the embedded server's listener.
	Host string
	Port int
}

// Defaults fills zero fields with working values.
func (c NATSConfig) Defaults() NATSConfig {
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = "tabularius.logs"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 4222
	}
	return c
}
