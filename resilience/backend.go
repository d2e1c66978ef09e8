package resilience

import (
	"context"
	"time"

	"github.com/jonwraymond/tagcache/store"
)

// BackendConfig selects which resilience layers wrap a backend.
// Nil/zero fields disable the corresponding layer.
type BackendConfig struct {
	// Retry retries failed operations with backoff.
	Retry *RetryConfig

	// Timeout bounds every backend call. Zero disables.
	Timeout time.Duration

	// Circuit sheds load after repeated failures.
	Circuit *CircuitBreakerConfig
}

// NewBackend wraps a backend with the configured resilience layers.
// Layering, outermost first: retry, circuit breaker, timeout. The retry
// layer sees circuit rejections and skips them via DefaultRetryIf, so an
// open circuit fails fast instead of burning the backoff budget.
//
// A nil next or an empty config returns next unchanged.
func NewBackend(next store.Backend, config BackendConfig) store.Backend {
	if next == nil {
		return nil
	}
	if config.Retry == nil && config.Timeout <= 0 && config.Circuit == nil {
		return next
	}

	b := &resilientBackend{next: next}
	if config.Retry != nil {
		b.retry = NewRetry(*config.Retry)
	}
	if config.Timeout > 0 {
		b.timeout = NewTimeout(TimeoutConfig{Timeout: config.Timeout})
	}
	if config.Circuit != nil {
		b.circuit = NewCircuitBreaker(*config.Circuit)
	}
	return b
}

type resilientBackend struct {
	next    store.Backend
	retry   *Retry
	timeout *Timeout
	circuit *CircuitBreaker
}

var _ store.Backend = (*resilientBackend)(nil)

func (b *resilientBackend) execute(ctx context.Context, op func(context.Context) error) error {
	wrapped := op
	if b.timeout != nil {
		inner := wrapped
		wrapped = func(ctx context.Context) error {
			return b.timeout.Execute(ctx, inner)
		}
	}
	if b.circuit != nil {
		inner := wrapped
		wrapped = func(ctx context.Context) error {
			return b.circuit.Execute(ctx, inner)
		}
	}
	if b.retry != nil {
		return b.retry.Execute(ctx, wrapped)
	}
	return wrapped(ctx)
}

func (b *resilientBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var ok bool
	err := b.execute(ctx, func(ctx context.Context) error {
		var opErr error
		value, ok, opErr = b.next.Get(ctx, key)
		return opErr
	})
	return value, ok, err
}

func (b *resilientBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.execute(ctx, func(ctx context.Context) error {
		return b.next.Set(ctx, key, value, ttl)
	})
}

func (b *resilientBackend) Delete(ctx context.Context, key string) error {
	return b.execute(ctx, func(ctx context.Context) error {
		return b.next.Delete(ctx, key)
	})
}

func (b *resilientBackend) ExpireAfter(ctx context.Context, key string, d time.Duration) error {
	return b.execute(ctx, func(ctx context.Context) error {
		return b.next.ExpireAfter(ctx, key, d)
	})
}

func (b *resilientBackend) FlushAll(ctx context.Context) error {
	return b.execute(ctx, func(ctx context.Context) error {
		return b.next.FlushAll(ctx)
	})
}

func (b *resilientBackend) SetAdd(ctx context.Context, key, member string) error {
	return b.execute(ctx, func(ctx context.Context) error {
		return b.next.SetAdd(ctx, key, member)
	})
}

func (b *resilientBackend) SetRemove(ctx context.Context, key, member string) error {
	return b.execute(ctx, func(ctx context.Context) error {
		return b.next.SetRemove(ctx, key, member)
	})
}

func (b *resilientBackend) SetMembers(ctx context.Context, key string) ([]string, error) {
	var members []string
	err := b.execute(ctx, func(ctx context.Context) error {
		var opErr error
		members, opErr = b.next.SetMembers(ctx, key)
		return opErr
	})
	return members, err
}

func (b *resilientBackend) Ping(ctx context.Context) error {
	return b.execute(ctx, func(ctx context.Context) error {
		return b.next.Ping(ctx)
	})
}

// Close is not wrapped; shutdown should not be retried or rejected.
func (b *resilientBackend) Close() error {
	return b.next.Close()
}
