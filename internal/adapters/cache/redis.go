package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"cytodash/internal/logging"
	"cytodash/internal/ports"
)

const scanBatch = 200

// RedisCache is a query cache shared through Redis.
// Keys are namespaced so that several stores can share one server.
type RedisCache struct {
	namespace string
	rdb       *goredis.Client
	ttl       time.Duration
}

// Verify interface compliance at compile time
var _ ports.QueryCache = (*RedisCache)(nil)

// NewRedisCache connects to addr and verifies the server answers
func NewRedisCache(addr, namespace string, ttl time.Duration) (*RedisCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisCacheWithClient(rdb, namespace, ttl), nil
}

func newRedisCacheWithClient(rdb *goredis.Client, namespace string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		namespace: "cytodash:" + namespace + ":",
		rdb:       rdb,
		ttl:       ttl,
	}
}

// Get implements QueryCache.Get. Redis failures are treated as misses.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.rdb.Get(ctx, c.namespace+key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			logging.Logger.Warn("Redis cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return b, true
}

// Set implements QueryCache.Set
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.rdb.Set(ctx, c.namespace+key, value, c.ttl).Err(); err != nil {
		logging.Logger.Warn("Redis cache set failed", "key", key, "error", err)
	}
}

// Invalidate implements QueryCache.Invalidate
func (c *RedisCache) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, c.namespace+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close implements QueryCache.Close
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
