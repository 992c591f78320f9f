// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

//go:build !nats

package shipper

import (
	"context"
	"fmt"

	"github.com/tomtom215/tabularius/internal/debuglog"
)

// NATSTransport is a stub when NATS dependencies are not compiled in.
// Build with -tags=nats to enable the JetStream transport.
type NATSTransport struct{}

// NewNATSTransport returns an error when NATS support is not compiled in.
func NewNATSTransport(cfg NATSConfig) (*NATSTransport, error) {
	return nil, fmt.Errorf("NATS transport not available: build with -tags=nats")
}

// Name implements Transport.
func (t *NATSTransport) Name() string { return "nats" }

// Send is a stub that returns an error.
func (t *NATSTransport) Send(ctx context.Context, batch []debuglog.Entry) error {
	return fmt.Errorf("NATS transport not available: build with -tags=nats")
}

// Close is a no-op stub.
func (t *NATSTransport) Close() error { return nil }
