// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline Metrics
	EntriesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabularius_entries_recorded_total",
			Help: "Total number of diagnostic entries recorded",
		},
		[]string{"level", "category"},
	)

	EntriesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabularius_entries_dropped_total",
			Help: "Total number of entries filtered before recording",
		},
		[]string{"reason"}, // "level", "category"
	)

	BufferSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tabularius_buffer_entries",
			Help: "Current number of entries in the in-memory buffer",
		},
	)

	BufferEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabularius_buffer_evictions_total",
			Help: "Total number of entries evicted from the bounded buffer",
		},
	)

	// Redaction Metrics
	RedactedFields = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabularius_redacted_fields_total",
			Help: "Total number of payload fields replaced by the redaction placeholder",
		},
	)

	SanitizeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabularius_sanitize_failures_total",
			Help: "Total number of payloads degraded to the sanitize-failure marker",
		},
	)

	// Sink Metrics
	SinkDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabularius_sink_deliveries_total",
			Help: "Total number of successful sink deliveries",
		},
		[]string{"sink"}, // "console", "storage", "network", "websocket"
	)

	SinkFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabularius_sink_failures_total",
			Help: "Total number of isolated sink delivery failures",
		},
		[]string{"sink"},
	)

	// Shipper Metrics
	ShipperBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabularius_shipper_batches_total",
			Help: "Total number of shipped batches by outcome",
		},
		[]string{"result"}, // "success", "failure", "rejected"
	)

	ShipperDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabularius_shipper_dropped_entries_total",
			Help: "Total number of entries dropped because the shipper queue was full",
		},
	)

	ShipperQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tabularius_shipper_queue_depth",
			Help: "Current number of entries waiting in the shipper queue",
		},
	)

	ShipperBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tabularius_shipper_breaker_state",
			Help: "Shipper circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tabularius_store_operation_duration_seconds",
			Help:    "Duration of badger store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabularius_store_operation_errors_total",
			Help: "Total number of failed badger store operations",
		},
		[]string{"operation"},
	)

	SessionsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabularius_sessions_swept_total",
			Help: "Total number of expired session keys removed by retention sweeps",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabularius_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tabularius_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tabularius_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tabularius_websocket_connections",
			Help: "Current number of live-tail WebSocket connections",
		},
	)

	WSEntriesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabularius_websocket_entries_sent_total",
			Help: "Total number of entries broadcast to live-tail clients",
		},
	)

	WSClientsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabularius_websocket_clients_dropped_total",
			Help: "Total number of clients disconnected for unread backlog",
		},
	)

	// Analytics Metrics
	AnalyticsInserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabularius_analytics_inserted_entries_total",
			Help: "Total number of entries mirrored into the analytics store",
		},
	)

	AnalyticsDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabularius_analytics_dropped_entries_total",
			Help: "Total number of entries dropped because the analytics queue was full",
		},
	)

	AnalyticsQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tabularius_analytics_query_duration_seconds",
			Help:    "Duration of analytics queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	// Auth Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabularius_auth_attempts_total",
			Help: "Total number of authentication attempts by outcome",
		},
		[]string{"result"}, // "success", "failure", "rate_limited"
	)
)

// RecordEntry counts a recorded diagnostic entry.
func RecordEntry(level, category string) {
	EntriesRecorded.WithLabelValues(level, category).Inc()
}

// RecordEntryDropped counts an entry filtered out before recording.
// Reason is "level" or "category".
func RecordEntryDropped(reason string) {
	EntriesDropped.WithLabelValues(reason).Inc()
}

// SetBufferSize updates the in-memory buffer gauge.
func SetBufferSize(n int) {
	BufferSize.Set(float64(n))
}

// RecordBufferEviction counts one FIFO eviction.
func RecordBufferEviction() {
	BufferEvictions.Inc()
}

// RecordRedactedFields counts fields replaced by the redaction placeholder.
func RecordRedactedFields(n int) {
	if n > 0 {
		RedactedFields.Add(float64(n))
	}
}

// RecordSanitizeFailure counts a payload degraded to the failure marker.
func RecordSanitizeFailure() {
	SanitizeFailures.Inc()
}

// RecordSinkDelivery counts a successful delivery to the named sink.
func RecordSinkDelivery(sink string) {
	SinkDeliveries.WithLabelValues(sink).Inc()
}

// RecordSinkFailure counts an isolated delivery failure for the named sink.
func RecordSinkFailure(sink string) {
	SinkFailures.WithLabelValues(sink).Inc()
}

// RecordShipperBatch counts a shipped batch by outcome.
func RecordShipperBatch(result string) {
	ShipperBatches.WithLabelValues(result).Inc()
}

// RecordShipperDrop counts entries dropped at the shipper queue.
func RecordShipperDrop(n int) {
	if n > 0 {
		ShipperDrops.Add(float64(n))
	}
}

// SetShipperQueueDepth updates the shipper queue gauge.
func SetShipperQueueDepth(depth int) {
	ShipperQueueDepth.Set(float64(depth))
}

// SetShipperBreakerState updates the breaker state gauge
// (0=closed, 1=half-open, 2=open).
func SetShipperBreakerState(state int) {
	ShipperBreakerState.Set(float64(state))
}

// RecordStoreOperation observes a badger operation's duration and outcome.
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation).Inc()
	}
}

// RecordSessionsSwept counts session keys removed by a retention sweep.
func RecordSessionsSwept(n int) {
	if n > 0 {
		SessionsSwept.Add(float64(n))
	}
}

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAuthAttempt counts an authentication attempt by outcome.
func RecordAuthAttempt(result string) {
	AuthAttempts.WithLabelValues(result).Inc()
}
