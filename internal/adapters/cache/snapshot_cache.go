package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
)

const (
	// SnapshotKey holds the last good dataset
	SnapshotKey = "doctors:dataset:latest"
	// SnapshotVersionKey holds the version of SnapshotKey
	SnapshotVersionKey = "doctors:dataset:version"
)

// SnapshotCache keeps the last good dataset in the cache so a restarted
// process can serve before its first regeneration completes.
type SnapshotCache struct {
	cache providers.CacheProvider
}

// NewSnapshotCache creates a snapshot repository backed by any CacheProvider
func NewSnapshotCache(cache providers.CacheProvider) repositories.SnapshotRepository {
	return &SnapshotCache{cache: cache}
}

// Save stores the dataset as JSON, then its version
func (c *SnapshotCache) Save(ctx context.Context, dataset *entities.Dataset, ttl time.Duration) error {
	if dataset == nil {
		return apperrors.NewValidationError("dataset is required")
	}
	data, err := json.Marshal(dataset)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	if err := c.cache.Set(ctx, SnapshotKey, data, ttl); err != nil {
		return err
	}
	return c.cache.Set(ctx, SnapshotVersionKey, []byte(dataset.Version), ttl)
}

// Touch extends the stored snapshot when it already holds version. Any other
// state is a NOT_FOUND error and the caller should Save instead.
func (c *SnapshotCache) Touch(ctx context.Context, version string, ttl time.Duration) error {
	stored, err := c.cache.Get(ctx, SnapshotVersionKey)
	if err != nil {
		return err
	}
	if string(stored) != version {
		return apperrors.NewNotFoundError(fmt.Sprintf("snapshot holds version %s", stored))
	}

	for _, key := range []string{SnapshotKey, SnapshotVersionKey} {
		ok, err := c.cache.Expire(ctx, key, ttl)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewNotFoundError(fmt.Sprintf("key not found: %s", key))
		}
	}
	return nil
}

// Load restores the stored dataset
func (c *SnapshotCache) Load(ctx context.Context) (*entities.Dataset, error) {
	data, err := c.cache.Get(ctx, SnapshotKey)
	if err != nil {
		return nil, err
	}

	var dataset entities.Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, apperrors.NewInternalError("stored dataset is corrupt", err)
	}
	if len(dataset.Doctors) == 0 {
		return nil, apperrors.NewNotFoundError("stored dataset is empty")
	}
	return &dataset, nil
}
