package tagged

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/tagcache/store"
)

// Cache is a tag index layered on a store.Store. All index state lives in
// the backend; the Cache itself holds no mutable state beyond the loader
// dedup group and is safe for concurrent use.
type Cache struct {
	store   *store.Store
	backend store.Backend
	group   singleflight.Group // dedups concurrent GetOrSet fills per key
}

// Loader produces a value for GetOrSet on a cache miss.
type Loader func(ctx context.Context) (any, error)

// New creates a tag index over st and its backend.
func New(st *store.Store) (*Cache, error) {
	if st == nil {
		return nil, ErrNilStore
	}
	return &Cache{store: st, backend: st.Backend()}, nil
}

// Set writes the value through the store, then adds key to every listed
// tag's member set and each tag-set address to key's reverse set. When the
// value write fails no index mutation is attempted, so the index never
// points at a key whose value was rejected. Index failures after a
// successful write are reported wrapped in ErrIndexUpdate; the remaining
// index updates are still attempted.
func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration, tags ...string) error {
	if err := c.store.Set(ctx, key, v, ttl); err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}

	var errs []error
	for _, tag := range tags {
		if err := c.backend.SetAdd(ctx, TagKey(tag), key); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.backend.SetAdd(ctx, ReverseKey(key), TagKey(tag)); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrIndexUpdate, errors.Join(errs...))
	}
	return nil
}

// Get retrieves the decoded value for key. ok is false when absent.
func (c *Cache) Get(ctx context.Context, key string) (any, bool, error) {
	return c.store.Get(ctx, key)
}

// GetDefault retrieves the decoded value for key, or def when absent.
func (c *Cache) GetDefault(ctx context.Context, key string, def any) (any, error) {
	return c.store.GetDefault(ctx, key, def)
}

// Find returns the current members of the tag's set. A tag with no members,
// or one that never existed, yields an empty slice, never an error.
func (c *Cache) Find(ctx context.Context, tag string) ([]string, error) {
	return c.backend.SetMembers(ctx, TagKey(tag))
}

// FindTags returns the tag-set addresses the key currently participates in.
// Empty when the key carries no tags.
func (c *Cache) FindTags(ctx context.Context, key string) ([]string, error) {
	return c.backend.SetMembers(ctx, ReverseKey(key))
}

// Delete removes a single key's value without touching the index. If
// after > 0 the key is scheduled to expire instead. The key's tag
// memberships survive; use DeleteTag to detach keys.
func (c *Cache) Delete(ctx context.Context, key string, after time.Duration) error {
	return c.store.Delete(ctx, key, after)
}

// DeleteTag removes the tag together with every entry and index reference
// it touches. For each key in the member set (snapshot at call time) the
// key's value and reverse set are deleted and the key is removed from every
// other tag set named in its reverse set, so multi-tagged keys are fully
// detached. The tag's own member set is deleted last. Per-member failures
// do not stop the cascade; they are aggregated into the returned error.
func (c *Cache) DeleteTag(ctx context.Context, tag string) error {
	tagKey := TagKey(tag)

	members, err := c.backend.SetMembers(ctx, tagKey)
	if err != nil {
		return err
	}

	var errs []error
	for _, key := range members {
		reverse, err := c.backend.SetMembers(ctx, ReverseKey(key))
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := c.backend.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
		if err := c.backend.Delete(ctx, ReverseKey(key)); err != nil {
			errs = append(errs, err)
		}

		for _, other := range reverse {
			if other == tagKey {
				// The whole set goes away below.
				continue
			}
			if err := c.backend.SetRemove(ctx, other, key); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if err := c.backend.Delete(ctx, tagKey); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GetOrSet returns the cached value for key, filling it from loader on a
// miss. Concurrent fills for the same key are deduplicated; only one loader
// runs and every caller receives its result. The fill is written with the
// given TTL and tags. Loader errors are not cached.
func (c *Cache) GetOrSet(ctx context.Context, key string, ttl time.Duration, tags []string, loader Loader) (any, error) {
	if loader == nil {
		return nil, ErrNilLoader
	}

	if v, ok, err := c.store.Get(ctx, key); err != nil {
		return nil, err
	} else if ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check: another flight may have filled the key while this
		// caller was queued behind it.
		if v, ok, err := c.store.Get(ctx, key); err != nil {
			return nil, err
		} else if ok {
			return v, nil
		}

		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Set(ctx, key, v, ttl, tags...); err != nil {
			return nil, err
		}
		return store.Decode(store.Encode(v)), nil
	})
	return v, err
}

// Clear removes every entry in the active backend namespace, index sets
// included.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}
