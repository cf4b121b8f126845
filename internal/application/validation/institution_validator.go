package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
)

type institutionRecord struct {
	IDInst       string `csv:"id_inst" validate:"required"`
	Name         string `csv:"name" validate:"required"`
	Unit         string `csv:"unit"`
	Street       string `csv:"street"`
	Post         string `csv:"post"`
	City         string `csv:"city"`
	Municipality string `csv:"municipality"`
	FullAddress  string `csv:"address" validate:"max=255"`
	Lat          string `csv:"lat"`
	Lng          string `csv:"lon"`
	Phone        string `csv:"phone"`
	Website      string `csv:"website"`
}

func institutionRecordFrom(raw entities.RawRow) institutionRecord {
	rec := institutionRecord{
		IDInst:       raw.Get("id_inst"),
		Name:         raw.Get("name", "inst", "institution"),
		Unit:         raw.Get("unit"),
		Street:       raw.Get("address", "street"),
		Post:         raw.Get("post"),
		City:         raw.Get("city"),
		Municipality: raw.Get("municipality"),
		Lat:          raw.Get("lat"),
		Lng:          raw.Get("lon", "lng"),
		Phone:        raw.Get("phone", "phones"),
		Website:      raw.Get("website", "websites"),
	}
	rec.FullAddress = FullAddress(rec.Street, rec.Post, rec.City)
	return rec
}

// FullAddress renders "street, post city", skipping missing parts
func FullAddress(street, post, city string) string {
	parts := make([]string, 0, 2)
	if street = strings.TrimSpace(street); street != "" {
		parts = append(parts, street)
	}
	if postCity := strings.TrimSpace(strings.TrimSpace(post) + " " + strings.TrimSpace(city)); postCity != "" {
		parts = append(parts, postCity)
	}
	return strings.Join(parts, ", ")
}

// ValidateInstitution validates one institutions row. The first diagnostic, when
// non-nil, excludes the row; the second is a non-fatal geolocation notice.
func (v *Validator) ValidateInstitution(raw entities.RawRow) (entities.Institution, *entities.Diagnostic, *entities.Diagnostic) {
	rec := institutionRecordFrom(raw)

	if err := v.Validate(rec); err != nil {
		identifier := rec.IDInst
		if identifier == "" {
			identifier = fmt.Sprintf("line %d", raw.Line)
		}
		return entities.Institution{}, &entities.Diagnostic{
			Stage:      entities.StageValidate,
			Source:     entities.SourceInstitutions,
			Line:       raw.Line,
			Identifier: identifier,
			Kind:       entities.DiagnosticValidationFailure,
			Reason:     v.reason(err),
		}, nil
	}

	institution := entities.Institution{
		IDInst: rec.IDInst,
		Name:   rec.Name,
		Unit:   rec.Unit,
		Location: entities.Location{
			Address: entities.Address{
				Street:       rec.Street,
				Post:         rec.Post,
				City:         rec.City,
				Municipality: rec.Municipality,
				FullAddress:  rec.FullAddress,
			},
		},
		Phones:   SplitList(rec.Phone),
		Websites: SplitList(rec.Website),
	}

	var notice *entities.Diagnostic
	if rec.Lat != "" || rec.Lng != "" {
		geo, err := parseGeo(rec.Lat, rec.Lng)
		if err != nil {
			notice = &entities.Diagnostic{
				Stage:      entities.StageValidate,
				Source:     entities.SourceInstitutions,
				Line:       raw.Line,
				Identifier: rec.IDInst,
				Kind:       entities.DiagnosticInvalidGeolocation,
				Reason:     err.Error(),
			}
		} else {
			institution.Location.Geo = &geo
		}
	}

	return institution, nil, notice
}

// ValidateInstitutions validates a batch, dropping invalid rows and repeated ids
func (v *Validator) ValidateInstitutions(rows []entities.RawRow) ([]entities.Institution, []entities.Diagnostic) {
	institutions := make([]entities.Institution, 0, len(rows))
	var diagnostics []entities.Diagnostic
	seen := make(map[string]int, len(rows))

	for _, raw := range rows {
		institution, diag, notice := v.ValidateInstitution(raw)
		if diag != nil {
			diagnostics = append(diagnostics, *diag)
			continue
		}
		if firstLine, dup := seen[institution.IDInst]; dup {
			diagnostics = append(diagnostics, entities.Diagnostic{
				Stage:      entities.StageValidate,
				Source:     entities.SourceInstitutions,
				Line:       raw.Line,
				Identifier: institution.IDInst,
				Kind:       entities.DiagnosticDuplicate,
				Reason:     fmt.Sprintf("duplicate of line %d", firstLine),
			})
			continue
		}
		if notice != nil {
			diagnostics = append(diagnostics, *notice)
		}
		seen[institution.IDInst] = raw.Line
		institutions = append(institutions, institution)
	}

	return institutions, diagnostics
}

func parseGeo(lat, lng string) (entities.GeoPoint, error) {
	if lat == "" || lng == "" {
		return entities.GeoPoint{}, fmt.Errorf("incomplete coordinates lat=%q lon=%q", lat, lng)
	}
	latValue, err := strconv.ParseFloat(strings.Replace(lat, ",", ".", 1), 64)
	if err != nil {
		return entities.GeoPoint{}, fmt.Errorf("invalid latitude %q", lat)
	}
	lngValue, err := strconv.ParseFloat(strings.Replace(lng, ",", ".", 1), 64)
	if err != nil {
		return entities.GeoPoint{}, fmt.Errorf("invalid longitude %q", lng)
	}
	point := entities.GeoPoint{Lat: latValue, Lng: lngValue}
	if !point.Valid() {
		return entities.GeoPoint{}, fmt.Errorf("coordinates out of range (%v, %v)", latValue, lngValue)
	}
	return point, nil
}
