package memory

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
)

// snapshot is a dataset plus lookup indexes built once on publish
type snapshot struct {
	dataset *entities.Dataset
	byFake  map[string]int
	byRoute map[entities.RouteKey][]int
	paths   []entities.RouteKey
}

// DoctorStore serves the current dataset. Readers never block; Replace swaps
// the whole snapshot so a request sees either the old or the new one.
type DoctorStore struct {
	current atomic.Pointer[snapshot]
}

// Ensure DoctorStore implements DoctorRepository
var _ repositories.DoctorRepository = (*DoctorStore)(nil)

// NewDoctorStore creates an empty store
func NewDoctorStore() *DoctorStore {
	return &DoctorStore{}
}

// Current returns the published dataset, nil before the first publish
func (s *DoctorStore) Current() *entities.Dataset {
	snap := s.current.Load()
	if snap == nil {
		return nil
	}
	return snap.dataset
}

// Replace publishes a dataset. A nil dataset is ignored.
func (s *DoctorStore) Replace(dataset *entities.Dataset) {
	if dataset == nil {
		return
	}
	s.current.Store(buildSnapshot(dataset))
}

// GetByFakeID retrieves a doctor by its surrogate key
func (s *DoctorStore) GetByFakeID(ctx context.Context, fakeID string) (*entities.JoinedDoctor, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, apperrors.NewNotFoundError("dataset not loaded")
	}
	idx, ok := snap.byFake[fakeID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor %s not found", fakeID))
	}
	doctor := snap.dataset.Doctors[idx]
	return &doctor, nil
}

// FindByRoute returns every doctor sharing the route triple, in dataset order.
// Keys are matched case-sensitively.
func (s *DoctorStore) FindByRoute(ctx context.Context, key entities.RouteKey) ([]entities.JoinedDoctor, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, apperrors.NewNotFoundError("dataset not loaded")
	}
	indexes := snap.byRoute[key]
	if len(indexes) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no doctors at %s", key.Path()))
	}
	doctors := make([]entities.JoinedDoctor, len(indexes))
	for i, idx := range indexes {
		doctors[i] = snap.dataset.Doctors[idx]
	}
	return doctors, nil
}

// Paths lists distinct complete route triples
func (s *DoctorStore) Paths(ctx context.Context) ([]entities.RouteKey, error) {
	snap := s.current.Load()
	if snap == nil {
		return []entities.RouteKey{}, nil
	}
	return append([]entities.RouteKey(nil), snap.paths...), nil
}

func buildSnapshot(dataset *entities.Dataset) *snapshot {
	snap := &snapshot{
		dataset: dataset,
		byFake:  make(map[string]int, len(dataset.Doctors)),
		byRoute: make(map[entities.RouteKey][]int, len(dataset.Doctors)),
		paths:   make([]entities.RouteKey, 0, len(dataset.Doctors)),
	}

	for i := range dataset.Doctors {
		doctor := &dataset.Doctors[i]
		if _, dup := snap.byFake[doctor.FakeID]; !dup {
			snap.byFake[doctor.FakeID] = i
		}

		key := doctor.RouteKey()
		if !key.Complete() {
			continue
		}
		if _, seen := snap.byRoute[key]; !seen {
			snap.paths = append(snap.paths, key)
		}
		snap.byRoute[key] = append(snap.byRoute[key], i)
	}

	return snap
}
