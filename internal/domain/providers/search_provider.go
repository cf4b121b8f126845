package providers

import (
	"context"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
)

// DoctorIndexer mirrors a regenerated dataset into an external search engine
type DoctorIndexer interface {
	// IndexDataset upserts every doctor and removes documents of older versions
	IndexDataset(ctx context.Context, dataset *entities.Dataset) error
}
