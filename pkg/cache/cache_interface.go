package cache

import (
	"context"
	"time"
)

// Cache is the key-value contract used for response caching, sessions and
// login throttling. Redis backs it in production.
type Cache interface {
	// Get unmarshals the value at key into dest.
	// found is false on a miss and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set marshals value to JSON and stores it for ttl.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error

	// DeletePattern removes every key matching a glob such as "crud:genres:*".
	DeletePattern(ctx context.Context, pattern string) error

	// Counters (failed login tracking)
	Increment(ctx context.Context, key string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}
