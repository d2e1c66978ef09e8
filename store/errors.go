package store

import (
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for store operations.
var (
	// ErrNilBackend indicates a nil Backend was provided.
	ErrNilBackend = errors.New("store: backend is nil")

	// ErrInvalidKey indicates a key is empty or contains control characters.
	ErrInvalidKey = errors.New("store: key is invalid")

	// ErrKeyTooLong indicates a key exceeds MaxKeyLength.
	ErrKeyTooLong = errors.New("store: key exceeds max length")

	// ErrBackendUnavailable indicates the backend could not be reached.
	ErrBackendUnavailable = errors.New("store: backend unavailable")
)

// ValidateKey checks if a key is valid for storage.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
