package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisOptions configures a RedisCache
type RedisOptions struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string
	DefaultTTL time.Duration
}

// RedisCache implements Cache on a shared Redis instance so every replica sees the same entries
type RedisCache struct {
	rdb        goredis.UniversalClient
	prefix     string
	defaultTTL time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisCacheWithClient(rdb, opts.KeyPrefix, opts.DefaultTTL), nil
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(rdb goredis.UniversalClient, prefix string, defaultTTL time.Duration) *RedisCache {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	return &RedisCache{rdb: rdb, prefix: prefix, defaultTTL: defaultTTL}
}

func (rc *RedisCache) key(k string) string {
	return rc.prefix + k
}

// Get retrieves a value from the cache
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, err := rc.rdb.Get(ctx, rc.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return v, true
}

// Set stores a value in the cache with a TTL
func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = rc.defaultTTL
	}
	return rc.rdb.Set(ctx, rc.key(key), value, ttl).Err()
}

// Delete removes a value from the cache
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	err := rc.rdb.Del(ctx, rc.key(key)).Err()
	if errors.Is(err, goredis.Nil) {
		return nil
	}
	return err
}

// Close closes the Redis client
func (rc *RedisCache) Close() error {
	return rc.rdb.Close()
}
