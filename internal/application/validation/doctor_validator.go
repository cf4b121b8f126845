package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/pkg/utils"
)

// doctorNamespace seeds the UUIDv5 surrogate keys exposed as fakeId
var doctorNamespace = uuid.MustParse("9b4d7c1e-3f52-5a8e-b1c4-6d0e2f7a8c93")

// doctorRecord is the schema a doctors row must satisfy before coercion
type doctorRecord struct {
	Name                 string `csv:"doctor" validate:"required"`
	Type                 string `csv:"type" validate:"required,oneof=gp gp-x gp-f ped gyn den den-y den-s"`
	IDInst               string `csv:"id_inst" validate:"required"`
	Accepts              string `csv:"accepts" validate:"required,oneof=y n"`
	Availability         string `csv:"availability" validate:"decimal"`
	Load                 string `csv:"load" validate:"decimal"`
	AcceptsOverride      string `csv:"accepts_override" validate:"omitempty,oneof=y n"`
	AvailabilityOverride string `csv:"availability_override" validate:"omitempty,decimal"`
	DateOverride         string `csv:"date_override"`
	NoteOverride         string `csv:"note_override" validate:"max=255"`
	Website              string `csv:"website"`
	Phone                string `csv:"phone"`
	Email                string `csv:"email"`
	OrderForm            string `csv:"orderform"`
}

func doctorRecordFrom(raw entities.RawRow) doctorRecord {
	return doctorRecord{
		Name:                 raw.Get("doctor", "name"),
		Type:                 strings.ToLower(raw.Get("type")),
		IDInst:               raw.Get("id_inst"),
		Accepts:              strings.ToLower(raw.Get("accepts")),
		Availability:         raw.Get("availability"),
		Load:                 raw.Get("load"),
		AcceptsOverride:      strings.ToLower(raw.Get("accepts_override")),
		AvailabilityOverride: raw.Get("availability_override"),
		DateOverride:         raw.Get("date_override"),
		NoteOverride:         raw.Get("note_override", "note"),
		Website:              raw.Get("website", "websites"),
		Phone:                raw.Get("phone", "phones"),
		Email:                raw.Get("email"),
		OrderForm:            raw.Get("orderform"),
	}
}

// ValidateDoctor validates and coerces one doctors row. A non-nil diagnostic
// means the row is excluded.
func (v *Validator) ValidateDoctor(raw entities.RawRow) (entities.Doctor, *entities.Diagnostic) {
	rec := doctorRecordFrom(raw)

	if err := v.Validate(rec); err != nil {
		return entities.Doctor{}, &entities.Diagnostic{
			Stage:      entities.StageValidate,
			Source:     entities.SourceDoctors,
			Line:       raw.Line,
			Identifier: doctorIdentifier(rec, raw.Line),
			Kind:       entities.DiagnosticValidationFailure,
			Reason:     v.reason(err),
		}
	}

	// Tags above already guarantee these parse.
	availability, _ := ParseDecimal(rec.Availability)
	load, _ := ParseDecimal(rec.Load)

	doctorType := entities.DoctorType(rec.Type)
	naturalKey := entities.NaturalKey(doctorType, rec.IDInst, rec.Name)

	doctor := entities.Doctor{
		ID:           naturalKey,
		FakeID:       uuid.NewSHA1(doctorNamespace, []byte(naturalKey)).String(),
		Name:         rec.Name,
		Slug:         utils.Slugify(rec.Name),
		Type:         doctorType,
		TypePage:     doctorType.TypePage(),
		Clinic:       doctorType.Clinic(),
		IDInst:       rec.IDInst,
		Accepts:      entities.Accepts(rec.Accepts),
		Availability: availability,
		Load:         load,
		Websites:     SplitList(rec.Website),
		Phones:       SplitList(rec.Phone),
		Email:        rec.Email,
		OrderForm:    rec.OrderForm,
		Override: entities.Override{
			Note: rec.NoteOverride,
			Date: rec.DateOverride,
		},
	}

	if rec.AcceptsOverride != "" {
		accepts := entities.Accepts(rec.AcceptsOverride)
		doctor.Override.Accepts = &accepts
		doctor.Accepts = accepts
	}
	if rec.AvailabilityOverride != "" {
		override, _ := ParseDecimal(rec.AvailabilityOverride)
		doctor.Override.Availability = &override
		doctor.Availability = override
	}

	if route := doctor.RouteKey(); route.Complete() {
		doctor.Href = route.Path()
	}

	return doctor, nil
}

// ValidateDoctors validates a batch. Invalid rows and repeated ids are dropped
// (the first occurrence wins); the rest keep source order.
func (v *Validator) ValidateDoctors(rows []entities.RawRow) ([]entities.Doctor, []entities.Diagnostic) {
	doctors := make([]entities.Doctor, 0, len(rows))
	var diagnostics []entities.Diagnostic
	seen := make(map[string]int, len(rows))

	for _, raw := range rows {
		doctor, diag := v.ValidateDoctor(raw)
		if diag != nil {
			diagnostics = append(diagnostics, *diag)
			continue
		}
		if firstLine, dup := seen[doctor.ID]; dup {
			diagnostics = append(diagnostics, entities.Diagnostic{
				Stage:      entities.StageValidate,
				Source:     entities.SourceDoctors,
				Line:       raw.Line,
				Identifier: doctor.ID,
				Kind:       entities.DiagnosticDuplicate,
				Reason:     fmt.Sprintf("duplicate of line %d", firstLine),
			})
			continue
		}
		seen[doctor.ID] = raw.Line
		doctors = append(doctors, doctor)
	}

	return doctors, diagnostics
}

func doctorIdentifier(rec doctorRecord, line int) string {
	if rec.Name == "" && rec.IDInst == "" {
		return fmt.Sprintf("line %d", line)
	}
	return entities.NaturalKey(entities.DoctorType(rec.Type), rec.IDInst, rec.Name)
}
