package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
)

func TestJoinDoctors_AttachesInstitution(t *testing.T) {
	doctors := []entities.Doctor{
		{ID: "gp|I1|Jan Kos", Name: "Jan Kos", IDInst: "I1"},
		{ID: "gp|I2|Ana", Name: "Ana", IDInst: "I2"},
	}
	institutions := []entities.Institution{
		{IDInst: "I2", Name: "ZD Kranj", Phones: []string{"04 1"}},
		{IDInst: "I1", Name: "Zdravstveni dom", Location: entities.Location{
			Address: entities.Address{FullAddress: "Main St 1"},
			Geo:     &entities.GeoPoint{Lat: 46.05, Lng: 14.5},
		}},
	}

	joined, diagnostics := JoinDoctors(doctors, institutions)

	assert.Empty(t, diagnostics)
	require.Len(t, joined, 2)
	assert.Equal(t, "Jan Kos", joined[0].Name)
	assert.Equal(t, "Zdravstveni dom", joined[0].Provider)
	assert.True(t, joined[0].Resolved())
	assert.Equal(t, "Main St 1", joined[0].FullAddress())
	geo, ok := joined[0].Geo()
	require.True(t, ok)
	assert.Equal(t, 46.05, geo.Lat)

	assert.Equal(t, "ZD Kranj", joined[1].Provider)
	_, ok = joined[1].Geo()
	assert.False(t, ok)
}

func TestJoinDoctors_UnresolvedDoctorIsKept(t *testing.T) {
	doctors := []entities.Doctor{
		{ID: "gp|I1|Ana", Name: "Ana", IDInst: "I1"},
		{ID: "gp|MISSING|Boris", Name: "Boris", IDInst: "MISSING"},
		{ID: "gp|I1|Cene", Name: "Cene", IDInst: "I1"},
	}
	institutions := []entities.Institution{{IDInst: "I1", Name: "ZD"}}

	joined, diagnostics := JoinDoctors(doctors, institutions)

	require.Len(t, joined, 3)
	assert.Equal(t, []string{"Ana", "Boris", "Cene"}, []string{joined[0].Name, joined[1].Name, joined[2].Name})

	boris := joined[1]
	assert.Equal(t, entities.ResolutionUnresolved, boris.Resolution)
	assert.False(t, boris.Resolved())
	assert.Empty(t, boris.Provider)
	assert.Empty(t, boris.FullAddress())
	_, ok := boris.Geo()
	assert.False(t, ok)

	require.Len(t, diagnostics, 1)
	assert.Equal(t, entities.DiagnosticUnresolvedReference, diagnostics[0].Kind)
	assert.Equal(t, "gp|MISSING|Boris", diagnostics[0].Identifier)
	assert.False(t, diagnostics[0].Dropped())
}

func TestJoinDoctors_InstitutionCopiesAreIndependent(t *testing.T) {
	doctors := []entities.Doctor{{ID: "a", IDInst: "I1"}, {ID: "b", IDInst: "I1"}}
	institutions := []entities.Institution{{IDInst: "I1", Location: entities.Location{Geo: &entities.GeoPoint{Lat: 1, Lng: 1}}}}

	joined, _ := JoinDoctors(doctors, institutions)

	joined[0].Institution.Location.Geo.Lat = 99
	assert.Equal(t, 1.0, joined[1].Institution.Location.Geo.Lat)
	assert.Equal(t, 1.0, institutions[0].Location.Geo.Lat)
}

func TestJoinDoctors_Empty(t *testing.T) {
	joined, diagnostics := JoinDoctors(nil, nil)
	assert.Empty(t, joined)
	assert.Empty(t, diagnostics)
}
