package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/zatekoja/doctordirectory/backend/internal/application/validation"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
)

// ReportService checks user-submitted corrections against the same schema the
// ingestion validator enforces. Delivering the report is someone else's job.
type ReportService struct {
	validator *validation.Validator
	doctors   repositories.DoctorRepository
}

// NewReportService creates a new report service
func NewReportService(validator *validation.Validator, doctors repositories.DoctorRepository) *ReportService {
	return &ReportService{
		validator: validator,
		doctors:   doctors,
	}
}

// Validate normalizes the payload and returns it, or a VALIDATION error with
// per-field messages. A fakeId, when given, must name a served doctor.
func (s *ReportService) Validate(ctx context.Context, input entities.ReportInput) (*entities.ReportInput, error) {
	report := entities.ReportInput{
		FakeID:       strings.TrimSpace(input.FakeID),
		Address:      strings.TrimSpace(input.Address),
		Website:      strings.Join(validation.SplitList(input.Website), ", "),
		Phone:        strings.Join(validation.SplitList(input.Phone), ", "),
		Email:        strings.TrimSpace(input.Email),
		OrderForm:    strings.TrimSpace(input.OrderForm),
		Accepts:      strings.ToLower(strings.TrimSpace(input.Accepts)),
		Availability: strings.TrimSpace(input.Availability),
		Note:         strings.TrimSpace(input.Note),
	}

	if err := s.validator.Validate(report); err != nil {
		return nil, apperrors.NewFieldValidationError("invalid report", s.validator.FormatValidationErrors(err))
	}

	availability, err := validation.ParseDecimal(report.Availability)
	if err != nil {
		return nil, apperrors.NewFieldValidationError("invalid report", map[string]string{
			"availability": "availability must be a decimal number",
		})
	}
	report.Availability = availability.String()

	if report.FakeID != "" {
		if _, err := s.doctors.GetByFakeID(ctx, report.FakeID); err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
				return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor %s not found", report.FakeID))
			}
			return nil, err
		}
	}

	return &report, nil
}
