package tagged

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/tagcache/store"
)

func newTestCache(t *testing.T) (*Cache, *store.MemoryBackend) {
	t.Helper()
	backend := store.NewMemoryBackend()
	st, err := store.New(backend, store.Policy{})
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	c, err := New(st)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c, backend
}

func TestNew_NilStore(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilStore) {
		t.Errorf("New(nil) error = %v, want ErrNilStore", err)
	}
}

func TestCache_SetEstablishesBothDirections(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "post:1", "body", 0, "blog"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	keys, err := c.Find(ctx, "blog")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"post:1"}) {
		t.Errorf("Find(blog) = %v, want [post:1]", keys)
	}

	tags, err := c.FindTags(ctx, "post:1")
	if err != nil {
		t.Fatalf("FindTags failed: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"tag:blog:keys"}) {
		t.Errorf("FindTags(post:1) = %v, want [tag:blog:keys]", tags)
	}
}

func TestCache_SetWithoutTags(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "plain", "v", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	tags, _ := c.FindTags(ctx, "plain")
	if len(tags) != 0 {
		t.Errorf("FindTags on untagged key = %v, want empty", tags)
	}
}

func TestCache_SetIdempotent(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := c.Set(ctx, "post:1", "body", 0, "blog", "featured"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	keys, _ := c.Find(ctx, "blog")
	if !reflect.DeepEqual(keys, []string{"post:1"}) {
		t.Errorf("Find(blog) after double Set = %v, want [post:1]", keys)
	}
	tags, _ := c.FindTags(ctx, "post:1")
	want := []string{"tag:blog:keys", "tag:featured:keys"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("FindTags after double Set = %v, want %v", tags, want)
	}
}

func TestCache_FindAbsentTag(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	keys, err := c.Find(ctx, "never-used")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Find on absent tag = %v, want empty", keys)
	}

	tags, err := c.FindTags(ctx, "never-used")
	if err != nil {
		t.Fatalf("FindTags failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("FindTags on absent key = %v, want empty", tags)
	}
}

func TestCache_DeleteTagCascade(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	// Scenario: one key under two tags, cascade through one of them.
	if err := c.Set(ctx, "post:1", map[string]any{"title": "hi"}, 0, "blog", "featured"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	keys, _ := c.Find(ctx, "blog")
	if !reflect.DeepEqual(keys, []string{"post:1"}) {
		t.Fatalf("Find(blog) = %v, want [post:1]", keys)
	}
	keys, _ = c.Find(ctx, "featured")
	if !reflect.DeepEqual(keys, []string{"post:1"}) {
		t.Fatalf("Find(featured) = %v, want [post:1]", keys)
	}

	if err := c.DeleteTag(ctx, "blog"); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}

	// Value is gone
	if _, ok, _ := c.Get(ctx, "post:1"); ok {
		t.Error("value should be gone after cascading delete")
	}
	// The deleted tag's set is empty
	if keys, _ := c.Find(ctx, "blog"); len(keys) != 0 {
		t.Errorf("Find(blog) after DeleteTag = %v, want empty", keys)
	}
	// The key was detached from the other tag too
	if keys, _ := c.Find(ctx, "featured"); len(keys) != 0 {
		t.Errorf("Find(featured) after DeleteTag = %v, want empty", keys)
	}
	// The reverse set is gone
	if tags, _ := c.FindTags(ctx, "post:1"); len(tags) != 0 {
		t.Errorf("FindTags after DeleteTag = %v, want empty", tags)
	}
}

func TestCache_DeleteTagLeavesOtherKeys(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "post:1", "a", 0, "blog")
	_ = c.Set(ctx, "post:2", "b", 0, "news")

	if err := c.DeleteTag(ctx, "blog"); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}

	if _, ok, _ := c.Get(ctx, "post:2"); !ok {
		t.Error("keys under unrelated tags must survive the cascade")
	}
	keys, _ := c.Find(ctx, "news")
	if !reflect.DeepEqual(keys, []string{"post:2"}) {
		t.Errorf("Find(news) = %v, want [post:2]", keys)
	}
}

func TestCache_DeleteTagAbsent(t *testing.T) {
	c, _ := newTestCache(t)

	// Deleting a tag that never existed is a no-op
	if err := c.DeleteTag(context.Background(), "ghost"); err != nil {
		t.Errorf("DeleteTag on absent tag = %v, want nil", err)
	}
}

func TestCache_DeleteValueKeepsIndex(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "post:1", "v", 0, "blog")

	// Value and reverse set are independent records
	if err := c.Delete(ctx, "post:1", 0); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, ok, _ := c.Get(ctx, "post:1"); ok {
		t.Error("value should be gone")
	}
	keys, _ := c.Find(ctx, "blog")
	if !reflect.DeepEqual(keys, []string{"post:1"}) {
		t.Errorf("Find(blog) = %v, want [post:1]: deleting a value must not prune the index", keys)
	}
}

func TestCache_FailedWriteSkipsIndex(t *testing.T) {
	backend := &failingBackend{Backend: store.NewMemoryBackend(), failSet: true}
	st, err := store.New(backend, store.Policy{})
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	c, err := New(st)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "post:1", "v", 0, "blog"); err == nil {
		t.Fatal("Set should surface the backend write failure")
	}

	// No index mutation on a failed value write
	if backend.setAddCalls.Load() != 0 {
		t.Error("index must not be touched when the value write failed")
	}
	keys, _ := c.Find(ctx, "blog")
	if len(keys) != 0 {
		t.Errorf("Find(blog) = %v, want empty after failed write", keys)
	}
}

func TestCache_IndexFailureSurfaced(t *testing.T) {
	backend := &failingBackend{Backend: store.NewMemoryBackend(), failSetAdd: true}
	st, _ := store.New(backend, store.Policy{})
	c, _ := New(st)
	ctx := context.Background()

	err := c.Set(ctx, "post:1", "v", 0, "blog")
	if !errors.Is(err, ErrIndexUpdate) {
		t.Errorf("Set error = %v, want ErrIndexUpdate", err)
	}

	// The value itself was written
	if _, ok, _ := c.Get(ctx, "post:1"); !ok {
		t.Error("value should be stored even when indexing failed")
	}
}

func TestCache_DeleteTagAggregatesFailures(t *testing.T) {
	backend := &failingBackend{Backend: store.NewMemoryBackend()}
	st, _ := store.New(backend, store.Policy{})
	c, _ := New(st)
	ctx := context.Background()

	_ = c.Set(ctx, "post:1", "a", 0, "blog")
	_ = c.Set(ctx, "post:2", "b", 0, "blog")

	backend.failDelete = true

	err := c.DeleteTag(ctx, "blog")
	if err == nil {
		t.Fatal("DeleteTag should report per-member delete failures")
	}

	// The cascade kept going: both members were visited
	if got := backend.deleteCalls.Load(); got < 4 {
		t.Errorf("delete attempts = %d, want the full cascade despite failures", got)
	}
}

func TestCache_TTLExpiryDoesNotPruneIndex(t *testing.T) {
	backend := store.NewMemoryBackend()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	backend.SetClock(func() time.Time { return now })

	st, _ := store.New(backend, store.Policy{})
	c, _ := New(st)
	ctx := context.Background()

	_ = c.Set(ctx, "post:1", "v", time.Minute, "blog")

	now = now.Add(time.Hour)

	// Entry expired independently of its tag associations
	if _, ok, _ := c.Get(ctx, "post:1"); ok {
		t.Error("entry should have expired")
	}
	keys, _ := c.Find(ctx, "blog")
	if !reflect.DeepEqual(keys, []string{"post:1"}) {
		t.Errorf("Find(blog) = %v: expiry must not prune index sets", keys)
	}
}

func TestCache_GetOrSet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var loads atomic.Int64
	loader := func(context.Context) (any, error) {
		loads.Add(1)
		return "loaded", nil
	}

	v, err := c.GetOrSet(ctx, "k", 0, []string{"blog"}, loader)
	if err != nil {
		t.Fatalf("GetOrSet failed: %v", err)
	}
	if v != "loaded" {
		t.Errorf("GetOrSet = %v, want loaded", v)
	}

	// Second call hits the cache
	v, err = c.GetOrSet(ctx, "k", 0, []string{"blog"}, loader)
	if err != nil {
		t.Fatalf("GetOrSet failed: %v", err)
	}
	if v != "loaded" {
		t.Errorf("GetOrSet = %v, want loaded", v)
	}
	if loads.Load() != 1 {
		t.Errorf("loader ran %d times, want 1", loads.Load())
	}

	// The fill was tagged
	keys, _ := c.Find(ctx, "blog")
	if !reflect.DeepEqual(keys, []string{"k"}) {
		t.Errorf("Find(blog) = %v, want [k]", keys)
	}
}

func TestCache_GetOrSetNilLoader(t *testing.T) {
	c, _ := newTestCache(t)
	if _, err := c.GetOrSet(context.Background(), "k", 0, nil, nil); !errors.Is(err, ErrNilLoader) {
		t.Errorf("GetOrSet error = %v, want ErrNilLoader", err)
	}
}

func TestCache_GetOrSetDedupsConcurrentFills(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var loads atomic.Int64
	release := make(chan struct{})
	loader := func(context.Context) (any, error) {
		loads.Add(1)
		<-release
		return "loaded", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrSet(ctx, "hot", 0, nil, loader)
			if err != nil {
				t.Errorf("GetOrSet failed: %v", err)
				return
			}
			if v != "loaded" {
				t.Errorf("GetOrSet = %v, want loaded", v)
			}
		}()
	}

	// Let the callers pile up behind one flight, then release it.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if loads.Load() != 1 {
		t.Errorf("loader ran %d times under contention, want 1", loads.Load())
	}
}

func TestCache_GetOrSetLoaderError(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	wantErr := errors.New("upstream down")
	if _, err := c.GetOrSet(ctx, "k", 0, nil, func(context.Context) (any, error) {
		return nil, wantErr
	}); !errors.Is(err, wantErr) {
		t.Errorf("GetOrSet error = %v, want %v", err, wantErr)
	}

	// Errors are not cached
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("a failed load must not leave a cached value")
	}
}

func TestCache_Clear(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "post:1", "v", 0, "blog")

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if _, ok, _ := c.Get(ctx, "post:1"); ok {
		t.Error("entries should be gone after Clear")
	}
	if keys, _ := c.Find(ctx, "blog"); len(keys) != 0 {
		t.Error("index sets should be gone after Clear")
	}
}

// failingBackend wraps a real backend and fails selected operations.
type failingBackend struct {
	store.Backend

	failSet    bool
	failSetAdd bool
	failDelete bool

	setAddCalls atomic.Int64
	deleteCalls atomic.Int64
}

var errBackendDown = errors.New("backend down")

func (b *failingBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if b.failSet {
		return errBackendDown
	}
	return b.Backend.Set(ctx, key, value, ttl)
}

func (b *failingBackend) SetAdd(ctx context.Context, key, member string) error {
	b.setAddCalls.Add(1)
	if b.failSetAdd {
		return errBackendDown
	}
	return b.Backend.SetAdd(ctx, key, member)
}

func (b *failingBackend) Delete(ctx context.Context, key string) error {
	b.deleteCalls.Add(1)
	if b.failDelete {
		return errBackendDown
	}
	return b.Backend.Delete(ctx, key)
}
