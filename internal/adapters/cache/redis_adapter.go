package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/doctordirectory/backend/internal/infrastructure/clients/redis"
	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
)

// RedisAdapter implements the CacheProvider interface using Redis
type RedisAdapter struct {
	client *redisclient.Client
}

// NewRedisAdapter creates a new Redis cache adapter
func NewRedisAdapter(client *redisclient.Client) providers.CacheProvider {
	return &RedisAdapter{client: client}
}

// Get retrieves a value from Redis
func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := a.client.Client().Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("key not found: %s", key))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return result, nil
}

// Set stores a value; a zero ttl keeps it until overwritten
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := a.client.Client().Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Expire resets the ttl without rewriting the value
func (a *RedisAdapter) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := a.client.Client().Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to expire %s: %w", key, err)
	}
	return ok, nil
}
