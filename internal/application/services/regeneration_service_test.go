package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctordirectory/backend/internal/application/validation"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/clients/sourceapi"
	querysvc "github.com/zatekoja/doctordirectory/backend/internal/query/services"
	"github.com/zatekoja/doctordirectory/backend/pkg/config"
	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
)

const (
	doctorsURL      = "https://example.test/doctors.csv"
	institutionsURL = "https://example.test/institutions.csv"
)

type MockSourceProvider struct {
	mock.Mock
}

func (m *MockSourceProvider) FetchSource(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func newTestRegenerationService(sources *MockSourceProvider) *RegenerationService {
	svc := NewRegenerationService(sources, validation.NewValidator(), config.SourcesConfig{
		DoctorsURL:      doctorsURL,
		InstitutionsURL: institutionsURL,
		Delimiter:       ',',
	}, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

const exampleDoctors = "doctor,type,id_inst,accepts\nJan Kos,gp,I1,y\n"
const exampleInstitutions = "id_inst,name,address,lat,lon\nI1,Zdravstveni dom,Main St 1,46.05,14.5\n"

func TestRegenerate_EndToEndExample(t *testing.T) {
	sources := new(MockSourceProvider)
	sources.On("FetchSource", mock.Anything, doctorsURL).Return(exampleDoctors, nil)
	sources.On("FetchSource", mock.Anything, institutionsURL).Return(exampleInstitutions, nil)

	dataset, err := newTestRegenerationService(sources).Regenerate(context.Background())
	require.NoError(t, err)
	require.Len(t, dataset.Doctors, 1)

	doctor := dataset.Doctors[0]
	assert.Equal(t, "Zdravstveni dom", doctor.Provider)
	assert.Equal(t, "jan-kos", doctor.Slug)
	assert.Equal(t, "/gp/jan-kos/I1", doctor.Href)
	assert.True(t, doctor.Resolved())

	inside := querysvc.BuildFilter(entities.FilterState{
		Accepts: entities.AcceptsFilterAll,
		Bounds: &entities.Bounds{
			SouthWest: entities.GeoPoint{Lat: 46.0, Lng: 14.0},
			NorthEast: entities.GeoPoint{Lat: 46.1, Lng: 14.6},
		},
	})
	elsewhere := querysvc.BuildFilter(entities.FilterState{
		Accepts: entities.AcceptsFilterAll,
		Bounds: &entities.Bounds{
			SouthWest: entities.GeoPoint{Lat: 45.5, Lng: 13.5},
			NorthEast: entities.GeoPoint{Lat: 45.6, Lng: 13.7},
		},
	})
	assert.True(t, inside(doctor))
	assert.False(t, elsewhere(doctor))

	assert.Equal(t, 1, dataset.Report.Doctors)
	assert.Equal(t, 0, dataset.Report.Unresolved)
	sources.AssertExpectations(t)
}

func TestBuild_IsIdempotent(t *testing.T) {
	svc := newTestRegenerationService(new(MockSourceProvider))
	raw := &sourceapi.Sources{
		Doctors: "doctor,type,id_inst,accepts,availability,website\n" +
			"Jan Kos,gp,I1,y,0.8,https://a.si\n" +
			"Ana Novak,ped,I2,n,,\n" +
			"Boris,den,I404,y,1,\n",
		Institutions: exampleInstitutions + "I2,ZD Kranj,Gosposvetska 10,46.24,14.35\n",
	}

	first, err := svc.Build(context.Background(), raw)
	require.NoError(t, err)
	second, err := svc.Build(context.Background(), raw)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first.Doctors)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second.Doctors)
	require.NoError(t, err)

	assert.Equal(t, string(firstJSON), string(secondJSON))
	assert.Equal(t, first.Version, second.Version)
	assert.Len(t, first.Version, versionLength)
}

func TestBuild_RowFailuresAreRecoveredLocally(t *testing.T) {
	svc := newTestRegenerationService(new(MockSourceProvider))
	raw := &sourceapi.Sources{
		Doctors: "doctor,type,id_inst,accepts\n" +
			"Jan Kos,gp,I1,y\n" +
			"Broken,gp\n" +
			"Nobody,xx,I1,y\n" +
			"Orphan,gyn,I9,n\n",
		Institutions: "id_inst,name,address,lat,lon\n" +
			"I1,Zdravstveni dom,Main St 1,46.05,14.5\n" +
			"I2,Too long," + strings.Repeat("a", 256) + ",46.0,14.0\n" +
			"I3,No geo,Side St,north,14.0\n",
	}

	dataset, err := svc.Build(context.Background(), raw)
	require.NoError(t, err)

	require.Len(t, dataset.Doctors, 2)
	assert.Equal(t, "Jan Kos", dataset.Doctors[0].Name)
	assert.Equal(t, "Orphan", dataset.Doctors[1].Name)
	assert.Equal(t, entities.ResolutionUnresolved, dataset.Doctors[1].Resolution)

	report := dataset.Report
	assert.Equal(t, 4, report.DoctorRows)
	assert.Equal(t, 3, report.InstitutionRows)
	assert.Equal(t, 2, report.Institutions)
	assert.Equal(t, 2, report.DroppedDoctors)
	assert.Equal(t, 1, report.DroppedInsts)
	assert.Equal(t, 1, report.Unresolved)
	assert.Equal(t, 1, report.WithoutGeo)

	kinds := map[entities.DiagnosticKind]int{}
	for _, d := range report.Diagnostics {
		kinds[d.Kind]++
	}
	assert.Equal(t, 1, kinds[entities.DiagnosticParseFailure])
	assert.Equal(t, 2, kinds[entities.DiagnosticValidationFailure])
	assert.Equal(t, 1, kinds[entities.DiagnosticInvalidGeolocation])
	assert.Equal(t, 1, kinds[entities.DiagnosticUnresolvedReference])
}

func TestRegenerate_SourceUnavailableIsRegenerationFailure(t *testing.T) {
	sources := new(MockSourceProvider)
	sources.On("FetchSource", mock.Anything, doctorsURL).Return(exampleDoctors, nil).Maybe()
	sources.On("FetchSource", mock.Anything, institutionsURL).
		Return("", apperrors.NewSourceUnavailableError(institutionsURL, assert.AnError))

	dataset, err := newTestRegenerationService(sources).Regenerate(context.Background())
	require.Error(t, err)
	assert.Nil(t, dataset)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRegeneration))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBuild_NoValidDoctorsIsRegenerationFailure(t *testing.T) {
	svc := newTestRegenerationService(new(MockSourceProvider))

	_, err := svc.Build(context.Background(), &sourceapi.Sources{
		Doctors:      "doctor,type,id_inst,accepts\n,gp,I1,y\n",
		Institutions: exampleInstitutions,
	})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRegeneration))

	_, err = svc.Build(context.Background(), &sourceapi.Sources{Doctors: "", Institutions: exampleInstitutions})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRegeneration))
}
