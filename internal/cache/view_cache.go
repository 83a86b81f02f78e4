// Package cache holds computed reconciliation views. Entries are keyed under
// a version number; any write to the library bumps the version, so every
// previously cached view becomes unreachable at once.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type ViewCache interface {
	// Get loads the entry for key into dest and reports whether it was found,
	// along with the cache version the lookup ran against.
	Get(ctx context.Context, key string, dest any) (found bool, version int64, err error)
	// Set stores value under the version returned by the Get that missed.
	// A view built before an Invalidate is therefore never visible after it.
	Set(ctx context.Context, key string, version int64, value any) error
	// Invalidate drops every cached view.
	Invalidate(ctx context.Context) error
}

const (
	keyPrefix  = "comicvault:view:"
	versionKey = keyPrefix + "version"
)

type RedisViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisViewCache connects to redisURL ("redis://host:port/db") and
// verifies the connection. password overrides the one in the URL when set.
func NewRedisViewCache(redisURL, password string, ttl time.Duration) (*RedisViewCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisViewCache{client: rdb, ttl: ttl}, nil
}

// NewRedisViewCacheFromClient wraps an existing client.
func NewRedisViewCacheFromClient(client *redis.Client, ttl time.Duration) *RedisViewCache {
	return &RedisViewCache{client: client, ttl: ttl}
}

func (c *RedisViewCache) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache version: %w", err)
	}
	return v, nil
}

func (c *RedisViewCache) entryKey(version int64, key string) string {
	return fmt.Sprintf("%sv%d:%s", keyPrefix, version, key)
}

func (c *RedisViewCache) Get(ctx context.Context, key string, dest any) (bool, int64, error) {
	v, err := c.version(ctx)
	if err != nil {
		return false, 0, err
	}

	data, err := c.client.Get(ctx, c.entryKey(v, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, v, nil
	}
	if err != nil {
		return false, v, fmt.Errorf("read cached view %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, v, fmt.Errorf("decode cached view %s: %w", key, err)
	}
	return true, v, nil
}

func (c *RedisViewCache) Set(ctx context.Context, key string, version int64, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode view %s: %w", key, err)
	}
	return c.client.Set(ctx, c.entryKey(version, key), data, c.ttl).Err()
}

func (c *RedisViewCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("bump cache version: %w", err)
	}
	return nil
}

func (c *RedisViewCache) Close() error {
	return c.client.Close()
}

// NoopCache never stores anything. It is used when no Redis URL is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, any) (bool, int64, error) { return false, 0, nil }
func (NoopCache) Set(context.Context, string, int64, any) error         { return nil }
func (NoopCache) Invalidate(context.Context) error                      { return nil }
