package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/zatekoja/doctordirectory/backend/pkg/config"
	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
	"github.com/zatekoja/doctordirectory/backend/pkg/retry"
)

const (
	DoctorsCollection = "doctors"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(ctx context.Context, cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	retryConfig := retry.DefaultConfig()
	retryConfig.MaxTotalTimeout = 30 * time.Second
	err := retry.DoWithLog(
		ctx,
		retryConfig,
		"Typesense",
		func() error {
			healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			_, err := client.Health(healthCtx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("Typesense connection attempt failed")
		},
	)

	if err != nil {
		return nil, apperrors.NewExternalError("failed to connect to Typesense after retries", err)
	}

	log.Info().Str("url", cfg.URL).Msg("Successfully connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the doctors collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return apperrors.NewExternalError("failed to retrieve collections", err)
	}

	for _, col := range collections {
		if col.Name == DoctorsCollection {
			log.Debug().Str("collection", DoctorsCollection).Msg("Typesense collection already exists")
			return nil
		}
	}

	schema := &api.CollectionSchema{
		Name: DoctorsCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "name_normalized", Type: "string"},
			{Name: "slug", Type: "string"},
			{Name: "type", Type: "string", Facet: pointer.True()},
			{Name: "type_page", Type: "string", Facet: pointer.True()},
			{Name: "id_inst", Type: "string", Facet: pointer.True()},
			{Name: "accepts", Type: "string", Facet: pointer.True()},
			{Name: "availability", Type: "float"},
			{Name: "provider", Type: "string", Optional: pointer.True()},
			{Name: "address", Type: "string", Optional: pointer.True()},
			{Name: "location", Type: "geopoint", Optional: pointer.True()},
			{Name: "resolution", Type: "string", Facet: pointer.True()},
			{Name: "href", Type: "string", Optional: pointer.True()},
			{Name: "dataset_version", Type: "string", Facet: pointer.True()},
		},
		DefaultSortingField: pointer.String("availability"),
	}

	if _, err := c.client.Collections().Create(ctx, schema); err != nil {
		return apperrors.NewExternalError("failed to create collection", err)
	}

	log.Info().Str("collection", DoctorsCollection).Msg("Created Typesense collection")
	return nil
}

// UpsertDoctor indexes one doctor document
func (c *Client) UpsertDoctor(ctx context.Context, document map[string]interface{}) error {
	if _, err := c.client.Collection(DoctorsCollection).Documents().Upsert(ctx, document); err != nil {
		return apperrors.NewExternalError(fmt.Sprintf("failed to upsert doctor %v", document["id"]), err)
	}
	return nil
}

// DeleteStaleDoctors removes documents written by any other dataset version
func (c *Client) DeleteStaleDoctors(ctx context.Context, version string) (int, error) {
	deleted, err := c.client.Collection(DoctorsCollection).Documents().Delete(ctx, &api.DeleteDocumentsParams{
		FilterBy: pointer.String(fmt.Sprintf("dataset_version:!=%s", version)),
	})
	if err != nil {
		return 0, apperrors.NewExternalError("failed to delete stale doctors", err)
	}
	return deleted, nil
}

// DropCollection deletes the doctors collection so the next InitSchema
// recreates it
func (c *Client) DropCollection(ctx context.Context) error {
	if _, err := c.client.Collection(DoctorsCollection).Delete(ctx); err != nil {
		return apperrors.NewExternalError("failed to delete collection", err)
	}
	log.Info().Str("collection", DoctorsCollection).Msg("Deleted Typesense collection")
	return nil
}
