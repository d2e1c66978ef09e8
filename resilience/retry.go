package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy defines how delays grow between retries.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the delay each attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear increases the delay linearly.
	BackoffLinear
	// BackoffConstant uses the same delay for every retry.
	BackoffConstant
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 5s
	MaxDelay time.Duration

	// Multiplier is the growth factor for exponential backoff.
	// Default: 2.0
	Multiplier float64

	// Strategy selects the backoff curve.
	// Default: BackoffExponential
	Strategy BackoffStrategy

	// NoJitter disables the random variance (up to 25%) added to each
	// delay. Jitter is on by default to avoid synchronized retries.
	NoJitter bool

	// RetryIf decides whether an error is worth retrying.
	// Default: retry every non-nil error except ErrCircuitOpen.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry runs operations with backoff between failed attempts.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a retry handler with defaults applied.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = DefaultRetryIf
	}

	return &Retry{config: config}
}

// DefaultRetryIf retries every error except a rejected circuit request.
// Retrying against an open circuit only burns the backoff budget.
func DefaultRetryIf(err error) bool {
	return err != nil && !errors.Is(err, ErrCircuitOpen)
}

// Execute runs the operation, retrying per the configuration. When all
// attempts fail the last error is returned wrapped in ErrMaxRetriesExceeded.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.config.RetryIf(err) {
			return err
		}
		if attempt >= r.config.MaxAttempts {
			break
		}

		delay := r.delay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastErr)
}

func (r *Retry) delay(attempt int) time.Duration {
	var delay time.Duration

	switch r.config.Strategy {
	case BackoffConstant:
		delay = r.config.InitialDelay
	case BackoffLinear:
		delay = r.config.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		multiplier := math.Pow(r.config.Multiplier, float64(attempt-1))
		delay = time.Duration(float64(r.config.InitialDelay) * multiplier)
	}

	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	if !r.config.NoJitter && delay > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int63n(int64(delay / 4)))
	}

	return delay
}
