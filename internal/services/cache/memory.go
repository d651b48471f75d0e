package cache

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache implements an in-process cache on top of go-cache
type MemoryCache struct {
	items *gocache.Cache
	stats CacheStats
}

// NewMemoryCache creates a cache whose entries expire after defaultTTL unless Set overrides it
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	return &MemoryCache{items: gocache.New(defaultTTL, cleanupInterval)}
}

// Get retrieves a value from the cache
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := mc.items.Get(key)
	if !ok {
		atomic.AddInt64(&mc.stats.Misses, 1)
		return nil, false
	}
	atomic.AddInt64(&mc.stats.Hits, 1)
	return v.([]byte), true
}

// Set stores a value in the cache with a TTL; ttl <= 0 uses the default
func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	mc.items.Set(key, value, ttl)
	atomic.AddInt64(&mc.stats.Sets, 1)
	return nil
}

// Delete removes a value from the cache
func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.items.Delete(key)
	atomic.AddInt64(&mc.stats.Deletes, 1)
	return nil
}

// Stats returns cache statistics
func (mc *MemoryCache) Stats() CacheStats {
	return CacheStats{
		Hits:    atomic.LoadInt64(&mc.stats.Hits),
		Misses:  atomic.LoadInt64(&mc.stats.Misses),
		Sets:    atomic.LoadInt64(&mc.stats.Sets),
		Deletes: atomic.LoadInt64(&mc.stats.Deletes),
		Size:    int64(mc.items.ItemCount()),
	}
}

// Close flushes the cache. go-cache stops its janitor once the cache is collected.
func (mc *MemoryCache) Close() error {
	mc.items.Flush()
	return nil
}
