package cache

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"cytodash/internal/ports"
)

// MemoryCache is an in-process query cache
type MemoryCache struct {
	cache *cache.Cache
}

// Verify interface compliance at compile time
var _ ports.QueryCache = (*MemoryCache)(nil)

// NewMemoryCache creates a MemoryCache whose entries expire after ttl
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{cache: cache.New(ttl, ttl*2)}
}

// Get implements QueryCache.Get
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// Set implements QueryCache.Set
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte) {
	m.cache.Set(key, value, cache.DefaultExpiration)
}

// Invalidate implements QueryCache.Invalidate
func (m *MemoryCache) Invalidate(ctx context.Context) error {
	m.cache.Flush()
	return nil
}

// Len returns the number of cached entries, including expired ones not yet evicted
func (m *MemoryCache) Len() int {
	return m.cache.ItemCount()
}

// Close implements QueryCache.Close
func (m *MemoryCache) Close() error {
	return nil
}

// NoopCache never stores anything
type NoopCache struct{}

// Verify interface compliance at compile time
var _ ports.QueryCache = NoopCache{}

func (NoopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (NoopCache) Set(context.Context, string, []byte)         {}
func (NoopCache) Invalidate(context.Context) error            { return nil }
func (NoopCache) Close() error                                { return nil }
