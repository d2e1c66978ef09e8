package resilience

import "errors"

// Sentinel errors for resilience wrappers.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a request.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrMaxRetriesExceeded is returned when retry attempts are exhausted.
	// The final attempt's error is wrapped alongside it.
	ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")

	// ErrTimeout is returned when an operation exceeds its deadline.
	ErrTimeout = errors.New("resilience: operation timed out")
)
