package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/repositories"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
)

// DirectoryListing is the grouped list view for one filter state
type DirectoryListing struct {
	Version string                 `json:"version"`
	Total   int                    `json:"total"`
	Groups  []entities.DoctorGroup `json:"groups"`
}

// DatasetSummary describes the dataset being served, without the doctors
type DatasetSummary struct {
	Version     string                      `json:"version"`
	GeneratedAt time.Time                   `json:"generatedAt"`
	Report      entities.RegenerationReport `json:"report"`
}

// DirectoryQueryService handles read-only directory operations against the
// currently served dataset
type DirectoryQueryService struct {
	doctors repositories.DoctorRepository
}

// NewDirectoryQueryService creates a new directory query service
func NewDirectoryQueryService(doctors repositories.DoctorRepository) *DirectoryQueryService {
	return &DirectoryQueryService{doctors: doctors}
}

// List filters the served dataset and groups the result. Before the first
// dataset is loaded it returns an empty listing.
func (s *DirectoryQueryService) List(ctx context.Context, state entities.FilterState) (*DirectoryListing, error) {
	_, span := observability.StartSpan(ctx, "DirectoryQueryService.List")
	defer span.End()

	listing := &DirectoryListing{Groups: []entities.DoctorGroup{}}
	dataset := s.doctors.Current()
	if dataset == nil {
		return listing, nil
	}

	filtered := Apply(dataset.Doctors, BuildFilter(state))
	listing.Version = dataset.Version
	listing.Total = len(filtered)
	if groups := GroupAndSort(filtered); groups != nil {
		listing.Groups = groups
	}

	observability.SetSpanAttributes(span,
		attribute.String("dataset.version", dataset.Version),
		attribute.Int("listing.total", listing.Total),
		attribute.Int("listing.groups", len(listing.Groups)),
	)
	return listing, nil
}

// GetDoctor retrieves one doctor by fakeId
func (s *DirectoryQueryService) GetDoctor(ctx context.Context, fakeID string) (*entities.JoinedDoctor, error) {
	if fakeID == "" {
		return nil, apperrors.NewValidationError("fakeId is required")
	}
	return s.doctors.GetByFakeID(ctx, fakeID)
}

// FindByRoute returns every doctor listed under the route triple
func (s *DirectoryQueryService) FindByRoute(ctx context.Context, key entities.RouteKey) ([]entities.JoinedDoctor, error) {
	if !key.Complete() {
		return nil, apperrors.NewValidationError("type, slugName and idInst are required")
	}
	return s.doctors.FindByRoute(ctx, key)
}

// Paths lists the route triples for static page generation
func (s *DirectoryQueryService) Paths(ctx context.Context) ([]entities.RouteKey, error) {
	return s.doctors.Paths(ctx)
}

// Dataset summarizes the served dataset
func (s *DirectoryQueryService) Dataset(ctx context.Context) (*DatasetSummary, error) {
	dataset := s.doctors.Current()
	if dataset == nil {
		return nil, apperrors.NewNotFoundError("dataset not loaded")
	}
	return &DatasetSummary{
		Version:     dataset.Version,
		GeneratedAt: dataset.GeneratedAt,
		Report:      dataset.Report,
	}, nil
}
