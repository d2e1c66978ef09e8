package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/tagcache/store"
)

// instrumentedBackend decorates a store.Backend with tracing, metrics, and
// logging for every operation.
type instrumentedBackend struct {
	next    store.Backend
	kind    string
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewBackend wraps a store.Backend with observability from obs. kind names
// the backend in telemetry attributes, e.g. "redis" or "memory". The
// wrapped backend is a drop-in replacement; errors pass through unchanged.
func NewBackend(next store.Backend, obs Observer, kind string) (store.Backend, error) {
	if next == nil {
		return nil, ErrNilBackend
	}
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return &instrumentedBackend{
		next:    next,
		kind:    kind,
		tracer:  newTracer(obs.Tracer()),
		metrics: metrics,
		logger:  obs.Logger(),
	}, nil
}

// observe runs fn inside a span and records metrics and an error log line.
func (b *instrumentedBackend) observe(ctx context.Context, meta OpMeta, fn func(ctx context.Context) error) error {
	ctx, span := b.tracer.StartSpan(ctx, meta)
	start := time.Now()

	err := fn(ctx)

	b.tracer.EndSpan(span, err)
	b.metrics.RecordOp(ctx, meta, time.Since(start), err)

	if err != nil {
		b.logger.WithOp(meta).Error(ctx, "cache operation failed",
			Field{Key: "key", Value: meta.Key},
			Field{Key: "error", Value: err.Error()},
		)
	}
	return err
}

func (b *instrumentedBackend) meta(op, key string) OpMeta {
	return OpMeta{Op: op, Backend: b.kind, Key: key}
}

func (b *instrumentedBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	meta := b.meta("get", key)

	var (
		value []byte
		ok    bool
	)
	err := b.observe(ctx, meta, func(ctx context.Context) error {
		var err error
		value, ok, err = b.next.Get(ctx, key)
		return err
	})
	if err == nil {
		b.metrics.RecordLookup(ctx, meta, ok)
	}
	return value, ok, err
}

func (b *instrumentedBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.observe(ctx, b.meta("set", key), func(ctx context.Context) error {
		return b.next.Set(ctx, key, value, ttl)
	})
}

func (b *instrumentedBackend) Delete(ctx context.Context, key string) error {
	return b.observe(ctx, b.meta("delete", key), func(ctx context.Context) error {
		return b.next.Delete(ctx, key)
	})
}

func (b *instrumentedBackend) ExpireAfter(ctx context.Context, key string, d time.Duration) error {
	return b.observe(ctx, b.meta("expire", key), func(ctx context.Context) error {
		return b.next.ExpireAfter(ctx, key, d)
	})
}

func (b *instrumentedBackend) FlushAll(ctx context.Context) error {
	return b.observe(ctx, b.meta("flush", ""), func(ctx context.Context) error {
		return b.next.FlushAll(ctx)
	})
}

func (b *instrumentedBackend) SetAdd(ctx context.Context, key, member string) error {
	return b.observe(ctx, b.meta("set_add", key), func(ctx context.Context) error {
		return b.next.SetAdd(ctx, key, member)
	})
}

func (b *instrumentedBackend) SetRemove(ctx context.Context, key, member string) error {
	return b.observe(ctx, b.meta("set_remove", key), func(ctx context.Context) error {
		return b.next.SetRemove(ctx, key, member)
	})
}

func (b *instrumentedBackend) SetMembers(ctx context.Context, key string) ([]string, error) {
	var members []string
	err := b.observe(ctx, b.meta("set_members", key), func(ctx context.Context) error {
		var err error
		members, err = b.next.SetMembers(ctx, key)
		return err
	})
	return members, err
}

func (b *instrumentedBackend) Ping(ctx context.Context) error {
	return b.observe(ctx, b.meta("ping", ""), func(ctx context.Context) error {
		return b.next.Ping(ctx)
	})
}

func (b *instrumentedBackend) Close() error {
	return b.next.Close()
}

// Ensure instrumentedBackend implements store.Backend
var _ store.Backend = (*instrumentedBackend)(nil)
