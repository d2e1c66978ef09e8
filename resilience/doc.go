// Package resilience provides fault-tolerance wrappers for cache backends:
// retry with backoff, operation timeouts, and a circuit breaker.
//
// The core cache stays thin on purpose; resilience is layered above it by
// wrapping a store.Backend:
//
//	backend, err := store.NewRedisBackend(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	guarded := resilience.NewBackend(backend, resilience.BackendConfig{
//		Timeout: 2 * time.Second,
//		Retry:   &resilience.RetryConfig{MaxAttempts: 3},
//		Circuit: &resilience.CircuitBreakerConfig{MaxFailures: 5},
//	})
//	st, err := store.New(guarded, store.DefaultPolicy())
//
// Each primitive (Retry, Timeout, CircuitBreaker) can also be used on its
// own via Execute.
package resilience
