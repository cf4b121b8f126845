package search

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
)

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) InitSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDocumentStore) UpsertDoctor(ctx context.Context, document map[string]interface{}) error {
	return m.Called(ctx, document).Error(0)
}

func (m *MockDocumentStore) DeleteStaleDoctors(ctx context.Context, version string) (int, error) {
	args := m.Called(ctx, version)
	return args.Int(0), args.Error(1)
}

func joined(name string, geo *entities.GeoPoint, resolution entities.Resolution) entities.JoinedDoctor {
	return entities.JoinedDoctor{
		Doctor: entities.Doctor{
			FakeID:       "fake-" + name,
			Name:         name,
			Type:         entities.DoctorTypeGPFloating,
			TypePage:     "gp",
			IDInst:       "I1",
			Accepts:      entities.AcceptsYes,
			Availability: decimal.RequireFromString("0.75"),
			Href:         "/gp/x/I1",
		},
		Provider:   "ZD Ljubljana",
		Resolution: resolution,
		Institution: entities.Institution{
			IDInst: "I1",
			Location: entities.Location{
				Address: entities.Address{FullAddress: "Metelkova 9, 1000 Ljubljana"},
				Geo:     geo,
			},
		},
	}
}

func TestBuildDoctorDocument(t *testing.T) {
	doctor := joined("Žana Čuk", &entities.GeoPoint{Lat: 46.05, Lng: 14.51}, entities.ResolutionResolved)

	doc := buildDoctorDocument(&doctor, "v1")

	assert.Equal(t, "fake-Žana Čuk", doc["id"])
	assert.Equal(t, "zana cuk", doc["name_normalized"])
	assert.Equal(t, "gp-f", doc["type"])
	assert.Equal(t, "gp", doc["type_page"])
	assert.Equal(t, 0.75, doc["availability"])
	assert.Equal(t, []float64{46.05, 14.51}, doc["location"])
	assert.Equal(t, "Metelkova 9, 1000 Ljubljana", doc["address"])
	assert.Equal(t, "v1", doc["dataset_version"])
}

func TestBuildDoctorDocument_UnresolvedHasNoLocation(t *testing.T) {
	doctor := joined("Ana", &entities.GeoPoint{Lat: 46.05, Lng: 14.51}, entities.ResolutionUnresolved)

	doc := buildDoctorDocument(&doctor, "v1")

	assert.NotContains(t, doc, "location")
	assert.NotContains(t, doc, "address")
	assert.Equal(t, "unresolved", doc["resolution"])
}

func TestIndexDataset(t *testing.T) {
	ctx := context.Background()
	store := new(MockDocumentStore)
	adapter := NewTypesenseAdapter(store)

	dataset := &entities.Dataset{
		Version: "v7",
		Doctors: []entities.JoinedDoctor{
			joined("Ana", nil, entities.ResolutionResolved),
			joined("Boris", nil, entities.ResolutionResolved),
		},
	}

	store.On("InitSchema", ctx).Return(nil)
	store.On("UpsertDoctor", ctx, mock.MatchedBy(func(doc map[string]interface{}) bool {
		return doc["dataset_version"] == "v7"
	})).Return(nil).Twice()
	store.On("DeleteStaleDoctors", ctx, "v7").Return(1, nil)

	require.NoError(t, adapter.IndexDataset(ctx, dataset))
	store.AssertExpectations(t)
}

func TestIndexDataset_StopsOnUpsertFailure(t *testing.T) {
	ctx := context.Background()
	store := new(MockDocumentStore)
	adapter := NewTypesenseAdapter(store)

	store.On("InitSchema", ctx).Return(nil)
	store.On("UpsertDoctor", ctx, mock.Anything).Return(errors.New("boom")).Once()

	err := adapter.IndexDataset(ctx, &entities.Dataset{
		Version: "v7",
		Doctors: []entities.JoinedDoctor{joined("Ana", nil, entities.ResolutionResolved)},
	})
	require.Error(t, err)
	store.AssertNotCalled(t, "DeleteStaleDoctors", mock.Anything, mock.Anything)
}
