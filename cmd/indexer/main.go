package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/doctordirectory/backend/internal/adapters/cache"
	"github.com/zatekoja/doctordirectory/backend/internal/adapters/events"
	"github.com/zatekoja/doctordirectory/backend/internal/adapters/memory"
	"github.com/zatekoja/doctordirectory/backend/internal/adapters/search"
	"github.com/zatekoja/doctordirectory/backend/internal/application/services"
	"github.com/zatekoja/doctordirectory/backend/internal/application/validation"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/repositories"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/clients/sourceapi"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/observability"
	"github.com/zatekoja/doctordirectory/backend/pkg/config"
	"github.com/zatekoja/doctordirectory/backend/pkg/retry"
)

// The indexer regenerates the dataset and exports it to Typesense, and to the
// Redis snapshot when Redis is enabled. Without -interval it runs once.
func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger(cfg.App.Name+"-indexer", cfg.App.Env, cfg.App.LogLevel)

	if err := run(cfg, reset, intervalFlag); err != nil {
		log.Fatal().Err(err).Msg("Indexer failed")
	}
}

func run(cfg *config.Config, reset bool, intervalFlag string) error {
	var err error

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", intervalValue, err)
		}
		if interval <= 0 {
			return fmt.Errorf("interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		return fmt.Errorf("failed to initialize Typesense client: %w", err)
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		if err := tsClient.DropCollection(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to delete collection")
		}
	}

	var (
		snapshots repositories.SnapshotRepository
		eventBus  providers.EventBus
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, snapshot export disabled")
		} else {
			defer redisClient.Close()
			snapshots = cache.NewSnapshotCache(cache.NewRedisAdapter(redisClient))
			eventBus = events.NewRedisEventBus(redisClient)
			defer eventBus.Close()
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	regenerator := services.NewRegenerationService(
		sourceapi.NewClient(cfg.Sources.Timeout),
		validation.NewValidator(),
		cfg.Sources,
		metrics,
	)
	// The store only remembers the last version so unchanged runs skip the export.
	scheduler := services.NewRegenerationScheduler(regenerator, memory.NewDoctorStore(), services.SchedulerOptions{
		Snapshots:   snapshots,
		Events:      eventBus,
		Indexer:     search.NewTypesenseAdapter(tsClient),
		Retry:       retry.RegenerationConfig(),
		SnapshotTTL: cfg.Regeneration.SnapshotTTL,
		Metrics:     metrics,
	})

	for {
		dataset, err := scheduler.RunOnce(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Reindex failed")
		} else {
			log.Info().Str("version", dataset.Version).Int("doctors", len(dataset.Doctors)).Msg("Reindex complete")
		}

		if interval <= 0 {
			return err
		}

		log.Info().Dur("next_run_in", interval).Msg("Waiting for next reindex")
		select {
		case <-ctx.Done():
			log.Info().Msg("Reindexer shutting down")
			return nil
		case <-time.After(interval):
		}
	}
}
