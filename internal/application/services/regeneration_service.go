package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/doctordirectory/backend/internal/adapters/csvsource"
	"github.com/zatekoja/doctordirectory/backend/internal/application/validation"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/clients/sourceapi"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/observability"
	"github.com/zatekoja/doctordirectory/backend/pkg/config"
	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
)

// versionLength is the number of hex characters kept from the content hash
const versionLength = 16

// RegenerationService runs fetch, parse, validate and join to build a dataset
type RegenerationService struct {
	sources   providers.SourceProvider
	validator *validation.Validator
	cfg       config.SourcesConfig
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewRegenerationService creates a new regeneration service
func NewRegenerationService(
	sources providers.SourceProvider,
	validator *validation.Validator,
	cfg config.SourcesConfig,
	metrics *observability.Metrics,
) *RegenerationService {
	return &RegenerationService{
		sources:   sources,
		validator: validator,
		cfg:       cfg,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Regenerate fetches both exports and builds a new dataset. Row-level problems
// only produce diagnostics; a missing source or an empty result is a
// REGENERATION_FAILED error and nothing is returned.
func (s *RegenerationService) Regenerate(ctx context.Context) (*entities.Dataset, error) {
	ctx, span := observability.StartSpan(ctx, "RegenerationService.Regenerate")
	defer span.End()
	logger := observability.PipelineLogger(ctx, "regenerate")

	start := time.Now()
	raw, err := sourceapi.FetchAll(ctx, s.sources, s.cfg.DoctorsURL, s.cfg.InstitutionsURL)
	if err != nil {
		observability.RecordError(span, err)
		observability.RecordRegeneration(ctx, s.metrics, "failure", time.Since(start))
		return nil, apperrors.NewRegenerationError("failed to fetch sources", err)
	}

	dataset, err := s.Build(ctx, raw)
	if err != nil {
		observability.RecordError(span, err)
		observability.RecordRegeneration(ctx, s.metrics, "failure", time.Since(start))
		return nil, err
	}

	observability.SetSpanAttributes(span,
		attribute.String("dataset.version", dataset.Version),
		attribute.Int("dataset.doctors", len(dataset.Doctors)),
		attribute.Int("dataset.diagnostics", len(dataset.Report.Diagnostics)),
	)
	observability.RecordRegeneration(ctx, s.metrics, "success", time.Since(start))

	logger.Info().
		Str("version", dataset.Version).
		Int("doctors", dataset.Report.Doctors).
		Int("institutions", dataset.Report.Institutions).
		Int("dropped_doctors", dataset.Report.DroppedDoctors).
		Int("dropped_institutions", dataset.Report.DroppedInsts).
		Int("unresolved", dataset.Report.Unresolved).
		Int("without_geolocation", dataset.Report.WithoutGeo).
		Dur("duration", time.Since(start)).
		Msg("Dataset regenerated")

	return dataset, nil
}

// Build turns already fetched source text into a dataset. It does no I/O, so
// identical input always yields identical doctors and the same version.
func (s *RegenerationService) Build(ctx context.Context, raw *sourceapi.Sources) (*entities.Dataset, error) {
	opts := csvsource.ParseOptions{Delimiter: s.cfg.Delimiter, Header: true}

	doctorRows, err := csvsource.Parse(raw.Doctors, opts)
	if err != nil {
		return nil, apperrors.NewRegenerationError("doctors source is unreadable", err)
	}
	institutionRows, err := csvsource.Parse(raw.Institutions, opts)
	if err != nil {
		return nil, apperrors.NewRegenerationError("institutions source is unreadable", err)
	}

	var diagnostics []entities.Diagnostic
	diagnostics = append(diagnostics, parseDiagnostics(entities.SourceDoctors, doctorRows.Errors)...)
	diagnostics = append(diagnostics, parseDiagnostics(entities.SourceInstitutions, institutionRows.Errors)...)

	doctors, doctorDiags := s.validator.ValidateDoctors(doctorRows.Rows)
	institutions, institutionDiags := s.validator.ValidateInstitutions(institutionRows.Rows)
	diagnostics = append(diagnostics, doctorDiags...)
	diagnostics = append(diagnostics, institutionDiags...)

	joined, joinDiags := JoinDoctors(doctors, institutions)
	diagnostics = append(diagnostics, joinDiags...)

	logDiagnostics(ctx, diagnostics)

	if len(joined) == 0 {
		return nil, apperrors.NewRegenerationError("no valid doctors in source", nil)
	}

	version, err := datasetVersion(joined)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash dataset", err)
	}

	report := entities.RegenerationReport{
		DoctorRows:      len(doctorRows.Rows) + len(doctorRows.Errors),
		InstitutionRows: len(institutionRows.Rows) + len(institutionRows.Errors),
		Doctors:         len(joined),
		Institutions:    len(institutions),
		Diagnostics:     diagnostics,
	}
	dropped := make(map[entities.Source]map[entities.DiagnosticKind]int)
	for _, d := range diagnostics {
		switch {
		case d.Dropped():
			if dropped[d.Source] == nil {
				dropped[d.Source] = make(map[entities.DiagnosticKind]int)
			}
			dropped[d.Source][d.Kind]++
			if d.Source == entities.SourceDoctors {
				report.DroppedDoctors++
			} else {
				report.DroppedInsts++
			}
		case d.Kind == entities.DiagnosticUnresolvedReference:
			report.Unresolved++
		}
	}
	for _, doctor := range joined {
		if _, ok := doctor.Geo(); !ok {
			report.WithoutGeo++
		}
	}

	for source, kinds := range dropped {
		for kind, count := range kinds {
			observability.RecordDroppedRows(ctx, s.metrics, string(source), string(kind), count)
		}
	}
	observability.RecordUnresolved(ctx, s.metrics, report.Unresolved)

	return &entities.Dataset{
		Version:     version,
		GeneratedAt: s.now().UTC(),
		Doctors:     joined,
		Report:      report,
	}, nil
}

func parseDiagnostics(source entities.Source, errs []csvsource.ParseError) []entities.Diagnostic {
	out := make([]entities.Diagnostic, 0, len(errs))
	for _, e := range errs {
		out = append(out, entities.Diagnostic{
			Stage:  entities.StageParse,
			Source: source,
			Line:   e.Line,
			Kind:   entities.DiagnosticParseFailure,
			Reason: e.Reason,
		})
	}
	return out
}

func logDiagnostics(ctx context.Context, diagnostics []entities.Diagnostic) {
	logger := observability.LoggerFromContext(ctx)
	for _, d := range diagnostics {
		logger.Warn().
			Str("stage", string(d.Stage)).
			Str("source", string(d.Source)).
			Int("line", d.Line).
			Str("identifier", d.Identifier).
			Str("kind", string(d.Kind)).
			Msg(d.Reason)
	}
}

// datasetVersion hashes the serialized doctors
func datasetVersion(doctors []entities.JoinedDoctor) (string, error) {
	data, err := json.Marshal(doctors)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:versionLength], nil
}
