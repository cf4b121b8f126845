package providers

import (
	"context"
	"time"
)

// CacheProvider is the key/value store behind the dataset snapshot and the
// HTTP response cache
type CacheProvider interface {
	// Get retrieves a value; a missing key is a NOT_FOUND AppError
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Expire resets the ttl of an existing key and reports whether it existed
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
