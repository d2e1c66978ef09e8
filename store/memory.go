package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryBackend is an in-memory Backend implementation. It is used for
// tests and as a stand-in when no external backend is configured.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	sets    map[string]map[string]struct{}
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]*memoryEntry),
		sets:    make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	entry, ok := b.entries[key]
	b.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if b.expired(entry) {
		// Expired - clean up lazily
		b.mu.Lock()
		delete(b.entries, key)
		b.mu.Unlock()
		return nil, false, nil
	}

	return entry.value, true, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := &memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = b.now().Add(ttl)
	}

	b.mu.Lock()
	b.entries[key] = entry
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	delete(b.entries, key)
	delete(b.sets, key)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) ExpireAfter(_ context.Context, key string, d time.Duration) error {
	b.mu.Lock()
	if entry, ok := b.entries[key]; ok {
		entry.expiresAt = b.now().Add(d)
	}
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) FlushAll(_ context.Context) error {
	b.mu.Lock()
	b.entries = make(map[string]*memoryEntry)
	b.sets = make(map[string]map[string]struct{})
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) SetAdd(_ context.Context, key, member string) error {
	b.mu.Lock()
	set, ok := b.sets[key]
	if !ok {
		set = make(map[string]struct{})
		b.sets[key] = set
	}
	set[member] = struct{}{}
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) SetRemove(_ context.Context, key, member string) error {
	b.mu.Lock()
	if set, ok := b.sets[key]; ok {
		delete(set, member)
	}
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) SetMembers(_ context.Context, key string) ([]string, error) {
	b.mu.RLock()
	set := b.sets[key]
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	b.mu.RUnlock()

	// Sorted for deterministic iteration in tests
	sort.Strings(members)
	return members, nil
}

func (b *MemoryBackend) Ping(context.Context) error { return nil }

func (b *MemoryBackend) Close() error { return nil }

func (b *MemoryBackend) expired(entry *memoryEntry) bool {
	return !entry.expiresAt.IsZero() && b.now().After(entry.expiresAt)
}

// SetClock replaces the backend's time source. Test hook for exercising
// TTL behavior without sleeping.
func (b *MemoryBackend) SetClock(now func() time.Time) {
	b.mu.Lock()
	b.now = now
	b.mu.Unlock()
}

// Ensure MemoryBackend implements Backend
var _ Backend = (*MemoryBackend)(nil)
