package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means requests pass through normally.
	StateClosed State = iota
	// StateOpen means requests are rejected immediately.
	StateOpen
	// StateHalfOpen means a limited number of probe requests are allowed.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the consecutive failure count that opens the circuit.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before probing.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxRequests caps concurrent probes in half-open state.
	// Default: 1
	HalfOpenMaxRequests int

	// OnStateChange is called on every state transition.
	OnStateChange func(from, to State)

	// IsFailure decides whether an error counts against the circuit.
	// Default: every non-nil error counts.
	IsFailure func(err error) bool
}

// CircuitBreaker sheds load from a failing backend by rejecting requests
// after repeated failures, then probing for recovery.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu            sync.Mutex
	state         State
	failures      int
	lastFailure   time.Time
	halfOpenCount int
}

// NewCircuitBreaker creates a circuit breaker with defaults applied.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	return &CircuitBreaker{config: config, state: StateClosed}
}

// Execute runs the operation through the circuit. Returns ErrCircuitOpen
// without invoking the operation when the circuit rejects the request.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := op(ctx)
	cb.afterRequest(err)
	return err
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset forces the circuit back to closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenCount = 0

	if oldState != StateClosed && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, StateClosed)
	}
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.halfOpenCount >= cb.config.HalfOpenMaxRequests {
			return ErrCircuitOpen
		}
		cb.halfOpenCount++
	}

	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	isFailure := cb.config.IsFailure(err)
	oldState := cb.state

	switch cb.state {
	case StateClosed:
		if isFailure {
			cb.failures++
			cb.lastFailure = time.Now()
			if cb.failures >= cb.config.MaxFailures {
				cb.state = StateOpen
			}
		} else {
			cb.failures = 0
		}

	case StateHalfOpen:
		if isFailure {
			// Probe failed, restart the open interval.
			cb.lastFailure = time.Now()
			cb.state = StateOpen
		} else {
			cb.state = StateClosed
			cb.failures = 0
		}
	}

	if oldState != cb.state && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, cb.state)
	}
}

func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && time.Since(cb.lastFailure) >= cb.config.ResetTimeout {
		cb.state = StateHalfOpen
		cb.halfOpenCount = 0
		if cb.config.OnStateChange != nil {
			cb.config.OnStateChange(StateOpen, StateHalfOpen)
		}
	}
	return cb.state
}
