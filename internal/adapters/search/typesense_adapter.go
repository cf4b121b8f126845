package search

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
	"github.com/zatekoja/doctordirectory/backend/pkg/utils"
)

// documentStore is the part of the Typesense client the adapter needs
type documentStore interface {
	InitSchema(ctx context.Context) error
	UpsertDoctor(ctx context.Context, document map[string]interface{}) error
	DeleteStaleDoctors(ctx context.Context, version string) (int, error)
}

// TypesenseAdapter mirrors published datasets into the doctors collection
type TypesenseAdapter struct {
	client documentStore
}

// Ensure TypesenseAdapter implements DoctorIndexer
var _ providers.DoctorIndexer = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client documentStore) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// IndexDataset upserts every doctor tagged with the dataset version, then drops
// documents left over from earlier versions.
func (a *TypesenseAdapter) IndexDataset(ctx context.Context, dataset *entities.Dataset) error {
	if dataset == nil {
		return nil
	}
	if err := a.client.InitSchema(ctx); err != nil {
		return err
	}

	for i := range dataset.Doctors {
		if err := a.client.UpsertDoctor(ctx, buildDoctorDocument(&dataset.Doctors[i], dataset.Version)); err != nil {
			return fmt.Errorf("failed to index doctor %s: %w", dataset.Doctors[i].FakeID, err)
		}
	}

	deleted, err := a.client.DeleteStaleDoctors(ctx, dataset.Version)
	if err != nil {
		return fmt.Errorf("failed to delete stale doctors: %w", err)
	}

	log.Info().
		Str("version", dataset.Version).
		Int("indexed", len(dataset.Doctors)).
		Int("deleted", deleted).
		Msg("Indexed dataset in Typesense")
	return nil
}

func buildDoctorDocument(doctor *entities.JoinedDoctor, version string) map[string]interface{} {
	availability, _ := doctor.Availability.Float64()

	document := map[string]interface{}{
		"id":              doctor.FakeID,
		"name":            doctor.Name,
		"name_normalized": utils.Normalize(doctor.Name),
		"slug":            doctor.Slug,
		"type":            string(doctor.Type),
		"type_page":       doctor.TypePage,
		"id_inst":         doctor.IDInst,
		"accepts":         string(doctor.Accepts),
		"availability":    availability,
		"resolution":      string(doctor.Resolution),
		"dataset_version": version,
	}
	if doctor.Provider != "" {
		document["provider"] = doctor.Provider
	}
	if address := doctor.FullAddress(); address != "" {
		document["address"] = address
	}
	if geo, ok := doctor.Geo(); ok {
		document["location"] = []float64{geo.Lat, geo.Lng}
	}
	if doctor.Href != "" {
		document["href"] = doctor.Href
	}
	return document
}
