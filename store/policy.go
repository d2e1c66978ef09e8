package store

import "time"

// Policy configures TTL handling for the adapter.
type Policy struct {
	// DefaultTTL is the TTL applied by SetDefault.
	// If zero, SetDefault stores without expiry.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Longer TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration
}

// DefaultPolicy returns the default TTL policy.
// DefaultTTL: 5 minutes, MaxTTL: unbounded
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 5 * time.Minute,
	}
}

// EffectiveTTL returns the TTL to use for a write. ttl <= 0 means no
// expiry and passes through unclamped; positive TTLs are clamped to MaxTTL.
func (p Policy) EffectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		return p.MaxTTL
	}
	return ttl
}
