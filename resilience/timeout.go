package resilience

import (
	"context"
	"errors"
	"time"
)

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for a single operation.
	// Default: 5 seconds
	Timeout time.Duration
}

// Timeout bounds operations with a deadline.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a timeout wrapper with defaults applied.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	return &Timeout{config: config}
}

// Execute runs the operation under the deadline. A deadline hit returns
// ErrTimeout; the operation keeps running on its (now cancelled) context
// and its result is discarded.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
