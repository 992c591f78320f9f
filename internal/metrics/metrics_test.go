// Tabularius - Diagnostic Event Logging Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tabularius

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestRecordEntry(t *testing.T) {
	c := EntriesRecorded.WithLabelValues("DEBUG", "Test Category")
	before := counterValue(t, c)

	RecordEntry("DEBUG", "Test Category")
	RecordEntry("DEBUG", "Test Category")

	if got := counterValue(t, c) - before; got != 2 {
		t.Errorf("recorded delta = %v, want 2", got)
	}
}

func TestRecordEntryDropped(t *testing.T) {
	c := EntriesDropped.WithLabelValues("level")
	before := counterValue(t, c)

	RecordEntryDropped("level")

	if got := counterValue(t, c) - before; got != 1 {
		t.Errorf("dropped delta = %v, want 1", got)
	}
}

func TestRecordRedactedFields_IgnoresNonPositive(t *testing.T) {
	before := counterValue(t, RedactedFields)

	RecordRedactedFields(0)
	RecordRedactedFields(-3)
	RecordRedactedFields(4)

	if got := counterValue(t, RedactedFields) - before; got != 4 {
		t.Errorf("redacted delta = %v, want 4", got)
	}
}

func TestSetBufferSize(t *testing.T) {
	SetBufferSize(42)
	if got := gaugeValue(t, BufferSize); got != 42 {
		t.Errorf("buffer gauge = %v, want 42", got)
	}
}

func TestRecordStoreOperation(t *testing.T) {
	c := StoreOperationErrors.WithLabelValues("append_op_test")
	before := counterValue(t, c)

	RecordStoreOperation("append_op_test", 5*time.Millisecond, nil)
	RecordStoreOperation("append_op_test", 5*time.Millisecond, errors.New("conflict"))

	if got := counterValue(t, c) - before; got != 1 {
		t.Errorf("error delta = %v, want 1 (only the failing op)", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := gaugeValue(t, APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)

	if got := gaugeValue(t, APIActiveRequests) - before; got != 1 {
		t.Errorf("active delta = %v, want 1", got)
	}
}
