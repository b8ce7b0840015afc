// Package cache provides a Redis-backed response cache for roster queries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"seals/api/internal/roster"
)

// ErrMiss is returned by Get when nothing is cached for the key.
var ErrMiss = errors.New("cache miss")

// RedisCache stores roster query results. Writes bump a generation counter
// that is part of every key, so stale results stop being addressed at once
// and expire on their own.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to redisURL and verifies the connection.
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisCacheWithClient(client, ttl), nil
}

// NewRedisCacheWithClient creates a cache from an existing Redis client
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisCache{
		client: client,
		prefix: "roster:",
		ttl:    ttl,
	}
}

func (c *RedisCache) generationKey() string {
	return c.prefix + "gen"
}

// Key addresses one query under the generation that was current when the
// key was resolved.
type Key string

func (c *RedisCache) key(ctx context.Context, query string) (Key, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("read cache generation: %w", err)
	}
	return Key(fmt.Sprintf("%sq:%d:%s", c.prefix, gen, query)), nil
}

// Get returns the cached entries for query or ErrMiss. The returned key is
// set on a miss too; passing it to Put stores the result under the
// generation read here, so a write that lands in between leaves the result
// unreachable instead of serving it as fresh.
func (c *RedisCache) Get(ctx context.Context, query string) ([]roster.Entry, Key, error) {
	key, err := c.key(ctx, query)
	if err != nil {
		return nil, "", err
	}
	raw, err := c.client.Get(ctx, string(key)).Bytes()
	if err == redis.Nil {
		return nil, key, ErrMiss
	}
	if err != nil {
		return nil, key, fmt.Errorf("read cached roster: %w", err)
	}

	var entries []roster.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, key, fmt.Errorf("unmarshal cached roster: %w", err)
	}
	if entries == nil {
		entries = []roster.Entry{}
	}
	return entries, key, nil
}

// Put stores entries under key.
func (c *RedisCache) Put(ctx context.Context, key Key, entries []roster.Entry) error {
	if key == "" {
		return errors.New("cache roster: empty key")
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}
	if err := c.client.Set(ctx, string(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache roster: %w", err)
	}
	return nil
}

// Invalidate makes every cached query unreachable.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping checks if Redis is reachable
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
