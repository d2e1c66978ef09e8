package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend is a Redis-backed Backend implementation.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend connects to the single backend named in cfg.
// Construction fails fast with ErrBackendUnavailable when the backend
// cannot be reached.
func NewRedisBackend(ctx context.Context, cfg Config) (*RedisBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	password, err := cfg.password()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	b := &RedisBackend{client: client, prefix: cfg.Prefix}
	if err := b.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return b, nil
}

// NewRedisBackendFromClient wraps an existing client the caller owns.
// The caller keeps responsibility for closing the client.
func NewRedisBackendFromClient(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: get %q: %w", key, err)
	}
	return data, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := b.client.Set(ctx, b.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("store: set %q: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, b.prefix+key).Err(); err != nil {
		return fmt.Errorf("store: delete %q: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) ExpireAfter(ctx context.Context, key string, d time.Duration) error {
	if err := b.client.Expire(ctx, b.prefix+key, d).Err(); err != nil {
		return fmt.Errorf("store: expire %q: %w", key, err)
	}
	return nil
}

// FlushAll removes every key in the active namespace. Without a prefix the
// whole logical database is flushed; with a prefix only prefixed keys are
// scanned and deleted, so unrelated tenants of the database survive.
func (b *RedisBackend) FlushAll(ctx context.Context) error {
	if b.prefix == "" {
		if err := b.client.FlushDB(ctx).Err(); err != nil {
			return fmt.Errorf("store: flush: %w", err)
		}
		return nil
	}
	return b.scanAndDelete(ctx, b.prefix+"*")
}

func (b *RedisBackend) scanAndDelete(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := b.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("store: flush scan: %w", err)
		}
		if len(keys) > 0 {
			if err := b.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("store: flush delete: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (b *RedisBackend) SetAdd(ctx context.Context, key, member string) error {
	if err := b.client.SAdd(ctx, b.prefix+key, member).Err(); err != nil {
		return fmt.Errorf("store: set add %q: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) SetRemove(ctx context.Context, key, member string) error {
	if err := b.client.SRem(ctx, b.prefix+key, member).Err(); err != nil {
		return fmt.Errorf("store: set remove %q: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) SetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := b.client.SMembers(ctx, b.prefix+key).Result()
	if err != nil {
		return nil, fmt.Errorf("store: set members %q: %w", key, err)
	}
	return members, nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

// Ensure RedisBackend implements Backend
var _ Backend = (*RedisBackend)(nil)
