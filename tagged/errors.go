package tagged

import "errors"

// Sentinel errors for tag index operations.
var (
	// ErrNilStore indicates a nil store was provided.
	ErrNilStore = errors.New("tagged: store is nil")

	// ErrIndexUpdate indicates the value write succeeded but one or more
	// index mutations failed, leaving the bidirectional mapping incomplete.
	ErrIndexUpdate = errors.New("tagged: index update failed")

	// ErrNilLoader indicates GetOrSet was called without a loader.
	ErrNilLoader = errors.New("tagged: loader is nil")
)
