package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*metricsImpl, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		t.Fatalf("%s metric not found", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordOp(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := OpMeta{Op: "set", Backend: "memory"}

	m.RecordOp(context.Background(), meta, 5*time.Millisecond, nil)
	m.RecordOp(context.Background(), meta, 5*time.Millisecond, errors.New("boom"))

	rm := collect(t, reader)

	if got := sumValue(t, rm, "cache.op.total"); got != 2 {
		t.Errorf("cache.op.total = %d, want 2", got)
	}
	if got := sumValue(t, rm, "cache.op.errors"); got != 1 {
		t.Errorf("cache.op.errors = %d, want 1", got)
	}

	hist := findMetric(rm, "cache.op.duration_ms")
	if hist == nil {
		t.Fatal("cache.op.duration_ms metric not found")
	}
	h, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", hist.Data)
	}
	var count uint64
	for _, dp := range h.DataPoints {
		count += dp.Count
	}
	if count != 2 {
		t.Errorf("duration histogram count = %d, want 2", count)
	}
}

func TestMetrics_RecordLookup(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := OpMeta{Op: "get", Backend: "memory"}

	m.RecordLookup(context.Background(), meta, true)
	m.RecordLookup(context.Background(), meta, true)
	m.RecordLookup(context.Background(), meta, false)

	rm := collect(t, reader)

	if got := sumValue(t, rm, "cache.lookup.hits"); got != 2 {
		t.Errorf("cache.lookup.hits = %d, want 2", got)
	}
	if got := sumValue(t, rm, "cache.lookup.misses"); got != 1 {
		t.Errorf("cache.lookup.misses = %d, want 1", got)
	}
}

func TestNoopMetrics_NoPanic(t *testing.T) {
	m := &noopMetrics{}
	m.RecordOp(context.Background(), OpMeta{Op: "get"}, time.Second, errors.New("x"))
	m.RecordLookup(context.Background(), OpMeta{Op: "get"}, true)
}
