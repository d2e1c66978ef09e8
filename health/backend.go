package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/tagcache/store"
)

// BackendCheckerConfig configures the backend health checker.
type BackendCheckerConfig struct {
	// Name identifies this checker. Default: "backend".
	Name string

	// Probe enables a write/read/delete round trip in addition to the
	// ping. A reachable backend that rejects writes reports degraded.
	Probe bool

	// ProbeKey is the key used for the round trip.
	// Default: "tagcache:health:probe".
	ProbeKey string

	// Timeout bounds a single check. Default: 3 seconds.
	Timeout time.Duration
}

// BackendChecker verifies a cache backend is reachable and serving.
type BackendChecker struct {
	config  BackendCheckerConfig
	backend store.Backend
}

// NewBackendChecker creates a health checker for the given backend.
func NewBackendChecker(backend store.Backend, config BackendCheckerConfig) (*BackendChecker, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}

	// Apply defaults
	if config.Name == "" {
		config.Name = "backend"
	}
	if config.ProbeKey == "" {
		config.ProbeKey = "tagcache:health:probe"
	}
	if config.Timeout <= 0 {
		config.Timeout = 3 * time.Second
	}

	return &BackendChecker{config: config, backend: backend}, nil
}

// Name returns the name of this checker.
func (c *BackendChecker) Name() string {
	return c.config.Name
}

// Check pings the backend and, when probing is enabled, round-trips a
// value through it.
func (c *BackendChecker) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()

	if err := c.backend.Ping(ctx); err != nil {
		return Unhealthy("backend unreachable", err)
	}

	if c.config.Probe {
		if err := c.probe(ctx); err != nil {
			return Degraded(fmt.Sprintf("backend reachable but probe failed: %v", err))
		}
	}

	return Healthy("backend reachable").WithDetails(map[string]any{
		"latency_ms": float64(time.Since(start)) / float64(time.Millisecond),
	})
}

func (c *BackendChecker) probe(ctx context.Context) error {
	key := c.config.ProbeKey

	if err := c.backend.Set(ctx, key, []byte("ok"), time.Minute); err != nil {
		return fmt.Errorf("probe write: %w", err)
	}
	value, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("probe read: %w", err)
	}
	if !ok || string(value) != "ok" {
		return fmt.Errorf("probe read back %q, want ok", value)
	}
	if err := c.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("probe delete: %w", err)
	}
	return nil
}

// Ensure BackendChecker implements Checker
var _ Checker = (*BackendChecker)(nil)
