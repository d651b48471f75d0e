package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/killallgit/segments-api/pkg/config"
)

// Cache defines the interface for cache implementations
type Cache interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value in the cache with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache
	Delete(ctx context.Context, key string) error

	// Close releases background resources
	Close() error
}

// CacheStats provides statistics about cache usage
type CacheStats struct {
	Hits    int64
	Misses  int64
	Sets    int64
	Deletes int64
	Size    int64
}

// StatsProvider interface for caches that provide statistics
type StatsProvider interface {
	Stats() CacheStats
}

// New builds the cache selected by cfg.Driver
func New(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryCache(cfg.DefaultTTL, cfg.CleanupInterval), nil
	case "redis":
		return NewRedisCache(ctx, RedisOptions{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			KeyPrefix:  cfg.KeyPrefix,
			DefaultTTL: cfg.DefaultTTL,
		})
	case "none":
		return NoopCache{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %q", cfg.Driver)
	}
}

// NoopCache never stores anything
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool)               { return nil, false }
func (NoopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NoopCache) Delete(context.Context, string) error                     { return nil }
func (NoopCache) Close() error                                             { return nil }
