package store

import (
	"context"
	"time"
)

// Backend is the minimal key-value contract the adapter runs against.
// Any store offering these primitives satisfies it; the tag index builds
// its member sets and reverse sets out of the set operations.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods must honor cancellation/deadlines.
// - Errors: a miss is not an error; Get reports it with ok=false.
type Backend interface {
	// Get returns the raw bytes stored under key. ok is false on miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key. ttl <= 0 stores without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key immediately. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error

	// ExpireAfter schedules removal of an existing key after d.
	// The key stays readable until the deadline passes.
	ExpireAfter(ctx context.Context, key string, d time.Duration) error

	// FlushAll removes every key in the active namespace, index sets
	// included. Destructive and non-recoverable.
	FlushAll(ctx context.Context) error

	// SetAdd adds member to the set stored under key.
	// Adding a present member is a no-op.
	SetAdd(ctx context.Context, key, member string) error

	// SetRemove removes member from the set stored under key.
	// Removing an absent member is a no-op.
	SetRemove(ctx context.Context, key, member string) error

	// SetMembers returns the members of the set stored under key.
	// An absent set yields an empty slice, not an error.
	SetMembers(ctx context.Context, key string) ([]string, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}
