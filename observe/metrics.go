package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records cache operation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOp records a cache operation with duration and error status.
	RecordOp(ctx context.Context, meta OpMeta, duration time.Duration, err error)

	// RecordLookup records a Get outcome as a hit or a miss.
	RecordLookup(ctx context.Context, meta OpMeta, hit bool)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	hitCount     metric.Int64Counter
	missCount    metric.Int64Counter
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"cache.op.total",
		metric.WithDescription("Total number of cache operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"cache.op.errors",
		metric.WithDescription("Total number of failed cache operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"cache.op.duration_ms",
		metric.WithDescription("Cache operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	hitCount, err := meter.Int64Counter(
		"cache.lookup.hits",
		metric.WithDescription("Total number of cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	missCount, err := meter.Int64Counter(
		"cache.lookup.misses",
		metric.WithDescription("Total number of cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		hitCount:     hitCount,
		missCount:    missCount,
	}, nil
}

// RecordOp records metrics for a cache operation.
func (m *metricsImpl) RecordOp(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(m.attrs(meta)...)

	// Always increment total counter
	m.totalCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	m.durationHist.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

// RecordLookup records a Get outcome.
func (m *metricsImpl) RecordLookup(ctx context.Context, meta OpMeta, hit bool) {
	opt := metric.WithAttributes(m.attrs(meta)...)
	if hit {
		m.hitCount.Add(ctx, 1, opt)
	} else {
		m.missCount.Add(ctx, 1, opt)
	}
}

// attrs builds the common attribute set. Keys are deliberately excluded:
// they are unbounded and would explode metric cardinality.
func (m *metricsImpl) attrs(meta OpMeta) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("cache.op", meta.Op),
	}
	if meta.Backend != "" {
		attrs = append(attrs, attribute.String("cache.backend", meta.Backend))
	}
	return attrs
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordOp(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordLookup(ctx context.Context, meta OpMeta, hit bool) {
}
