// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package shipper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/tabularius/internal/debuglog"
	"github.com/tomtom215/tabularius/internal/metrics"
)

// HTTPTransport POSTs JSON batches to the collector URL, protected by a
// circuit breaker and an outbound rate limiter.
type HTTPTransport struct {
	cfg     HTTPConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[interface{}]
	limiter *rate.Limiter
}

// NewHTTPTransport creates the transport. The URL must be non-empty.
func NewHTTPTransport(cfg HTTPConfig) (*HTTPTransport, error) {
	cfg = cfg.Defaults()
	if cfg.URL == "" {
		return nil, fmt.Errorf("http transport: collector URL is required")
	}

	settings := gobreaker.Settings{
		Name:    "shipper-http",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetShipperBreakerState(breakerStateValue(to))
		},
	}

	return &HTTPTransport{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[interface{}](settings),
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
	}, nil
}

// Name implements Transport.
func (t *HTTPTransport) Name() string { return "http" }

// BreakerState exposes the breaker for readiness checks.
func (t *HTTPTransport) BreakerState() gobreaker.State { return t.breaker.State() }

// Send implements Transport. It waits for a rate token, then posts the
// batch through the breaker.
func (t *HTTPTransport) Send(ctx context.Context, batch []debuglog.Entry) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	_, err := t.breaker.Execute(func() (interface{}, error) {
		return nil, t.post(ctx, batch)
	})
	return err
}

func (t *HTTPTransport) post(ctx context.Context, batch []debuglog.Entry) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector returned status %d", resp.StatusCode)
	}
	return nil
}

// Close implements Transport.
func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

func breakerStateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
