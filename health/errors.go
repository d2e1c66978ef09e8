package health

import "errors"

var (
	// ErrCheckTimeout indicates a health check timed out.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates a checker was not found.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrNilBackend indicates a nil backend was provided.
	ErrNilBackend = errors.New("health: backend is nil")
)
