// Package cache stores discovery responses keyed by candidate identity so
// repeat lookups skip the external platforms entirely. The Redis store
// degrades to a miss on any backend failure: a broken cache must never
// break discovery.
package cache

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the result cache. Get returns (nil, false, nil) on a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
}

// Key builds the cache key for a candidate identity. Keys are lowercased
// with spaces collapsed to underscores so the same person hashes the same
// regardless of input formatting.
func Key(email, name string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Join(strings.Fields(name), "_")
	return fmt.Sprintf("discovery:%s:%s", email, name)
}

// Redis is a Store backed by a Redis server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// Config configures the Redis store.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedis constructs a Redis-backed store. The connection is verified
// lazily; a Redis that is down at startup just means misses until it
// recovers.
func NewRedis(cfg Config) *Redis {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: ttl,
	}
}

// Get fetches a cached payload. Backend errors are logged and reported as
// a miss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		log.Printf("cache get degraded to miss key=%s err=%v", key, err)
		return nil, false, nil
	}
	return b, true, nil
}

// Put stores a payload with the configured TTL. Backend errors are logged
// and swallowed.
func (r *Redis) Put(ctx context.Context, key string, payload []byte) error {
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		log.Printf("cache put dropped key=%s err=%v", key, err)
	}
	return nil
}

// Ping checks backend connectivity for health reporting.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Noop is a Store that caches nothing. Used when caching is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Put(context.Context, string, []byte) error         { return nil }
