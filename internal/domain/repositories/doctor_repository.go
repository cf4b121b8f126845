package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
)

// DoctorRepository serves the currently published dataset
type DoctorRepository interface {
	// Current returns the dataset being served, nil before the first regeneration
	Current() *entities.Dataset

	// GetByFakeID retrieves a doctor by its surrogate key
	GetByFakeID(ctx context.Context, fakeID string) (*entities.JoinedDoctor, error)

	// FindByRoute returns every doctor sharing the route triple
	FindByRoute(ctx context.Context, key entities.RouteKey) ([]entities.JoinedDoctor, error)

	// Paths lists the distinct complete route triples in dataset order
	Paths(ctx context.Context) ([]entities.RouteKey, error)

	// Replace publishes a new dataset atomically
	Replace(dataset *entities.Dataset)
}

// SnapshotRepository persists the last good dataset between process restarts
type SnapshotRepository interface {
	// Save stores the dataset for ttl
	Save(ctx context.Context, dataset *entities.Dataset, ttl time.Duration) error

	// Touch extends the ttl of a stored snapshot holding version. It returns
	// NOT_FOUND when the stored snapshot is missing or holds another version.
	Touch(ctx context.Context, version string, ttl time.Duration) error

	// Load returns the stored dataset or a NOT_FOUND error
	Load(ctx context.Context) (*entities.Dataset, error)
}
