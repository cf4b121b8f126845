package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/repositories"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
	"github.com/zatekoja/doctordirectory/backend/pkg/retry"
)

// snapshotMetricKey labels cache hit/miss metrics for snapshot warming
const snapshotMetricKey = "dataset_snapshot"

// failedRegenerationMessage is sent to subscribers instead of the raw error
const failedRegenerationMessage = "regeneration failed, serving previous dataset"

// DatasetRegenerator builds a fresh dataset from source
type DatasetRegenerator interface {
	Regenerate(ctx context.Context) (*entities.Dataset, error)
}

// SchedulerOptions wires the optional collaborators of the scheduler.
// Nil Snapshots, Events or Indexer disable that step.
type SchedulerOptions struct {
	Snapshots   repositories.SnapshotRepository
	Events      providers.EventBus
	Indexer     providers.DoctorIndexer
	Retry       retry.Config
	SnapshotTTL time.Duration
	Metrics     *observability.Metrics
}

// RegenerationScheduler periodically rebuilds the dataset and publishes it.
// A failed run never touches the dataset being served.
type RegenerationScheduler struct {
	regenerator DatasetRegenerator
	store       repositories.DoctorRepository
	opts        SchedulerOptions
	mu          sync.Mutex
}

// NewRegenerationScheduler creates a new regeneration scheduler
func NewRegenerationScheduler(
	regenerator DatasetRegenerator,
	store repositories.DoctorRepository,
	opts SchedulerOptions,
) *RegenerationScheduler {
	return &RegenerationScheduler{
		regenerator: regenerator,
		store:       store,
		opts:        opts,
	}
}

// Warm publishes the stored snapshot when nothing is being served yet.
// It reports whether a snapshot was loaded.
func (s *RegenerationScheduler) Warm(ctx context.Context) bool {
	if s.opts.Snapshots == nil || s.store.Current() != nil {
		return false
	}

	dataset, err := s.opts.Snapshots.Load(ctx)
	if err != nil {
		observability.RecordCacheMiss(ctx, s.opts.Metrics, snapshotMetricKey)
		log.Info().Err(err).Msg("No dataset snapshot to warm from")
		return false
	}

	observability.RecordCacheHit(ctx, s.opts.Metrics, snapshotMetricKey)
	s.store.Replace(dataset)
	log.Info().
		Str("version", dataset.Version).
		Int("doctors", len(dataset.Doctors)).
		Time("generated_at", dataset.GeneratedAt).
		Msg("Serving dataset snapshot until regeneration completes")
	return true
}

// RunOnce regenerates with retry and publishes the result. On failure the
// previous dataset stays in place and the error is returned.
func (s *RegenerationScheduler) RunOnce(ctx context.Context) (*entities.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := observability.StartSpan(ctx, "RegenerationScheduler.RunOnce")
	defer span.End()

	var dataset *entities.Dataset
	err := retry.DoWithLog(ctx, s.opts.Retry, "regeneration", func() error {
		var err error
		dataset, err = s.regenerator.Regenerate(ctx)
		return err
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("Regeneration attempt failed")
	})

	if err != nil {
		observability.RecordError(span, err)
		s.onFailure(ctx, err)
		return nil, err
	}

	s.publish(ctx, dataset)
	return dataset, nil
}

// Start warms from the snapshot, then regenerates in the background right away
// and every interval until ctx is cancelled.
func (s *RegenerationScheduler) Start(ctx context.Context, interval time.Duration) {
	s.Warm(ctx)

	go func() {
		if _, err := s.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Initial regeneration failed")
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Stopping regeneration scheduler")
				return
			case <-ticker.C:
				if _, err := s.RunOnce(ctx); err != nil {
					log.Error().Err(err).Msg("Periodic regeneration failed")
				}
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("Started periodic regeneration")
}

func (s *RegenerationScheduler) publish(ctx context.Context, dataset *entities.Dataset) {
	previous := s.store.Current()
	unchanged := previous != nil && previous.Version == dataset.Version

	if !unchanged {
		s.store.Replace(dataset)
	}

	if s.opts.Snapshots != nil {
		s.saveSnapshot(ctx, dataset, unchanged)
	}

	if unchanged {
		log.Debug().Str("version", dataset.Version).Msg("Dataset unchanged")
		return
	}

	if s.opts.Indexer != nil {
		if err := s.opts.Indexer.IndexDataset(ctx, dataset); err != nil {
			log.Warn().Err(err).Str("version", dataset.Version).Msg("Failed to index dataset")
		}
	}

	s.emit(ctx, entities.NewDatasetEvent(entities.DatasetEventTypeRegenerated, dataset.Version, len(dataset.Doctors), ""))
}

// saveSnapshot writes the dataset to the snapshot store. An unchanged dataset
// only has its TTL extended, unless the stored copy is missing or stale.
func (s *RegenerationScheduler) saveSnapshot(ctx context.Context, dataset *entities.Dataset, unchanged bool) {
	if unchanged {
		err := s.opts.Snapshots.Touch(ctx, dataset.Version, s.opts.SnapshotTTL)
		if err == nil {
			return
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			log.Warn().Err(err).Str("version", dataset.Version).Msg("Failed to extend dataset snapshot")
			return
		}
	}
	if err := s.opts.Snapshots.Save(ctx, dataset, s.opts.SnapshotTTL); err != nil {
		log.Warn().Err(err).Str("version", dataset.Version).Msg("Failed to save dataset snapshot")
	}
}

func (s *RegenerationScheduler) onFailure(ctx context.Context, err error) {
	version, doctors := "", 0
	if current := s.store.Current(); current != nil {
		version, doctors = current.Version, len(current.Doctors)
	}

	log.Error().Err(err).Str("serving_version", version).Msg("Regeneration failed, keeping previous dataset")
	s.emit(ctx, entities.NewDatasetEvent(entities.DatasetEventTypeRegenerationFailed, version, doctors, failedRegenerationMessage))
}

func (s *RegenerationScheduler) emit(ctx context.Context, event *entities.DatasetEvent) {
	if s.opts.Events == nil {
		return
	}
	if err := s.opts.Events.Publish(ctx, providers.EventChannelDatasetUpdates, event); err != nil {
		log.Warn().Err(err).Str("event_type", string(event.EventType)).Msg("Failed to publish dataset event")
	}
}
