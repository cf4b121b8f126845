package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/doctordirectory/backend/internal/adapters/cache"
	"github.com/zatekoja/doctordirectory/backend/internal/adapters/events"
	"github.com/zatekoja/doctordirectory/backend/internal/adapters/memory"
	"github.com/zatekoja/doctordirectory/backend/internal/adapters/search"
	"github.com/zatekoja/doctordirectory/backend/internal/api/handlers"
	"github.com/zatekoja/doctordirectory/backend/internal/api/middleware"
	"github.com/zatekoja/doctordirectory/backend/internal/api/routes"
	"github.com/zatekoja/doctordirectory/backend/internal/application/services"
	"github.com/zatekoja/doctordirectory/backend/internal/application/validation"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/repositories"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/clients/sourceapi"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/observability"
	querysvc "github.com/zatekoja/doctordirectory/backend/internal/query/services"
	"github.com/zatekoja/doctordirectory/backend/pkg/config"
	"github.com/zatekoja/doctordirectory/backend/pkg/retry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger(cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Redis backs the snapshot, the response cache and cross-instance events.
	// Without it the service still runs from memory.
	var (
		cacheProvider providers.CacheProvider
		snapshots     repositories.SnapshotRepository
		eventBus      providers.EventBus
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.RedisAddr()).Msg("Redis unavailable, continuing without cache")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			snapshots = cache.NewSnapshotCache(cacheProvider)
			eventBus = events.NewRedisEventBus(redisClient)
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized")
		}
	}
	if eventBus == nil {
		eventBus = events.NewMemoryEventBus()
	}
	defer func() {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	var indexer providers.DoctorIndexer
	if cfg.Typesense.Enabled {
		typesenseClient, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, search index export disabled")
		} else {
			indexer = search.NewTypesenseAdapter(typesenseClient)
			log.Info().Str("url", cfg.Typesense.URL).Msg("Typesense client initialized")
		}
	}

	validator := validation.NewValidator()
	store := memory.NewDoctorStore()

	regenerator := services.NewRegenerationService(
		sourceapi.NewClient(cfg.Sources.Timeout),
		validator,
		cfg.Sources,
		metrics,
	)
	scheduler := services.NewRegenerationScheduler(regenerator, store, services.SchedulerOptions{
		Snapshots:   snapshots,
		Events:      eventBus,
		Indexer:     indexer,
		Retry:       retry.RegenerationConfig(),
		SnapshotTTL: cfg.Regeneration.SnapshotTTL,
		Metrics:     metrics,
	})
	scheduler.Start(ctx, cfg.Regeneration.Interval)

	version := func() string {
		if current := store.Current(); current != nil {
			return current.Version
		}
		return ""
	}

	var responseCache *middleware.ResponseCache
	if cacheProvider != nil {
		responseCache = middleware.NewResponseCache(cacheProvider, version, cfg.Server.ResponseCacheTTL, metrics)
	}

	router := routes.NewRouter(
		handlers.NewDoctorHandler(querysvc.NewDirectoryQueryService(store)),
		handlers.NewReportHandler(services.NewReportService(validator, store)),
		handlers.NewSSEHandler(eventBus, store),
		routes.Options{
			ResponseCache:  responseCache,
			Version:        version,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Metrics:        metrics,
		},
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
