package cache

import (
	"context"
	"time"
)

// Store is the byte-level cache behind the feed cache. Two implementations
// exist: redis when REDIS_ADDR is configured and an in-process map otherwise.
// Either way the database remains the source of truth; a cache miss or a
// store error always falls through to a database read.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}
