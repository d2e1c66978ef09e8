package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// OpMeta identifies a cache operation for telemetry purposes.
type OpMeta struct {
	Op      string // Operation name: get, set, delete, flush, set_add, set_remove, set_members, expire, ping
	Backend string // Backend kind, e.g. "redis" or "memory" (optional)
	Key     string // Cache key or index-set address the operation touched (optional)
}

// SpanName returns the deterministic span name for this operation.
// Format: cache.<op>
func (m OpMeta) SpanName() string {
	return "cache." + m.Op
}

// Tracer wraps OpenTelemetry tracing with cache-operation span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a cache operation.
	StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with operation metadata as attributes.
// Keys are recorded; values never are.
func (t *tracerImpl) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("cache.op", meta.Op),
		attribute.Bool("cache.error", false), // Will be updated in EndSpan if error
	}

	if meta.Backend != "" {
		attrs = append(attrs, attribute.String("cache.backend", meta.Backend))
	}
	if meta.Key != "" {
		attrs = append(attrs, attribute.String("cache.key", meta.Key))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("cache.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
