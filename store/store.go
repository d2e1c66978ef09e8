package store

import (
	"context"
	"time"
)

// Store translates an abstract get/set/delete/clear contract onto a
// Backend, handling value encoding and TTL policy. It performs no retries;
// backend failures surface to the caller unchanged.
type Store struct {
	backend Backend
	policy  Policy
}

// New creates a Store over the given backend.
func New(backend Backend, policy Policy) (*Store, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	return &Store{backend: backend, policy: policy}, nil
}

// Get retrieves the decoded value for key. ok is false when the key is
// absent or expired.
func (s *Store) Get(ctx context.Context, key string) (any, bool, error) {
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	return Decode(data), true, nil
}

// GetDefault retrieves the decoded value for key, or def when absent.
func (s *Store) GetDefault(ctx context.Context, key string, def any) (any, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Set encodes v and stores it under key. ttl <= 0 stores without expiry;
// positive TTLs are clamped by the configured policy. A nil return means
// the backend acknowledged the write.
func (s *Store) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.backend.Set(ctx, key, Encode(v), s.policy.EffectiveTTL(ttl))
}

// SetDefault stores v under key with the policy's default TTL.
func (s *Store) SetDefault(ctx context.Context, key string, v any) error {
	return s.Set(ctx, key, v, s.policy.DefaultTTL)
}

// Delete removes key. If after > 0 the existing key is scheduled to expire
// after that duration instead of being removed immediately.
func (s *Store) Delete(ctx context.Context, key string, after time.Duration) error {
	if after > 0 {
		return s.backend.ExpireAfter(ctx, key, after)
	}
	return s.backend.Delete(ctx, key)
}

// Clear removes every entry in the active backend namespace, including all
// index sets. Destructive and non-recoverable.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.FlushAll(ctx)
}

// Backend exposes the underlying backend for collaborators that need its
// set primitives, such as the tag index.
func (s *Store) Backend() Backend {
	return s.backend
}

// Policy returns the store's TTL policy.
func (s *Store) Policy() Policy {
	return s.policy
}
