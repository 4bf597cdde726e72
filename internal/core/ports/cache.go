// internal/core/ports/cache.go
package ports

import (
	"context"
	"time"
)

// CacheRepository is the port handlers and workers use to cache read models
// (catalog entries, stock snapshots, forecasts) and import job status.
// Implemented by the Redis adapter.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// GetOrSet reads through the cache: on a miss it calls fetch, stores the
	// result under key and copies it into dest.
	GetOrSet(ctx context.Context, key string, dest interface{},
		fetch func() (interface{}, error), ttl time.Duration) error

	// Counters
	Increment(ctx context.Context, key string) (int64, error)
	IncrementBy(ctx context.Context, key string, value int64) (int64, error)

	// SetNX sets key only when absent
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	TTL(ctx context.Context, key string) (time.Duration, error)
	Flush(ctx context.Context) error
	Ping(ctx context.Context) error
}
