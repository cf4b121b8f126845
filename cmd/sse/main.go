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
	"github.com/zatekoja/doctordirectory/backend/internal/api/handlers"
	"github.com/zatekoja/doctordirectory/backend/internal/api/middleware"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/repositories"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/observability"
	"github.com/zatekoja/doctordirectory/backend/pkg/config"
)

// The SSE server streams dataset events published by the API or indexer
// instances over Redis, so long-lived connections stay off the API servers.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger(cfg.App.Name+"-sse", cfg.App.Env, cfg.App.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.RedisAddr()).Msg("Failed to initialize Redis client")
	}
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	snapshots := cache.NewSnapshotCache(cache.NewRedisAdapter(redisClient))

	// The store only feeds the version in the "connected" event.
	store := memory.NewDoctorStore()
	refreshFromSnapshot(ctx, snapshots, store)
	updates, err := eventBus.Subscribe(ctx, providers.EventChannelDatasetUpdates)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to subscribe to dataset updates")
	}
	go func() {
		for event := range updates {
			if event.EventType == entities.DatasetEventTypeRegenerated {
				refreshFromSnapshot(ctx, snapshots, store)
			}
		}
	}()

	sseHandler := handlers.NewSSEHandler(eventBus, store)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := redisClient.Ping(r.Context()); err != nil {
			log.Warn().Err(err).Msg("Health check: Redis unreachable")
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})
	mux.HandleFunc("GET /api/stream/dataset", sseHandler.StreamDatasetUpdates)
	mux.HandleFunc("GET /api/stream/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"connected_clients": %d}`, sseHandler.GetClientCount())
	})

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(cfg.Server.AllowedOrigins)(handler)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("SSE server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("SSE server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("SSE server shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("SSE server stopped")
}

func refreshFromSnapshot(ctx context.Context, snapshots repositories.SnapshotRepository, store *memory.DoctorStore) {
	dataset, err := snapshots.Load(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("No dataset snapshot available")
		return
	}
	store.Replace(dataset)
	log.Info().Str("version", dataset.Version).Msg("Loaded dataset snapshot")
}
