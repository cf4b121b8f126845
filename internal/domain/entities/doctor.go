package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DoctorType is the source type code of a doctor row
type DoctorType string

const (
	DoctorTypeGP             DoctorType = "gp"
	DoctorTypeGPExtra        DoctorType = "gp-x"
	DoctorTypeGPFloating     DoctorType = "gp-f"
	DoctorTypePediatrics     DoctorType = "ped"
	DoctorTypeGynecology     DoctorType = "gyn"
	DoctorTypeDentist        DoctorType = "den"
	DoctorTypeDentistYouth   DoctorType = "den-y"
	DoctorTypeDentistStudent DoctorType = "den-s"
)

// DoctorTypes lists every accepted type code in display order
var DoctorTypes = []DoctorType{
	DoctorTypeGP,
	DoctorTypeGPExtra,
	DoctorTypeGPFloating,
	DoctorTypePediatrics,
	DoctorTypeGynecology,
	DoctorTypeDentist,
	DoctorTypeDentistYouth,
	DoctorTypeDentistStudent,
}

// Valid reports whether t is one of the known type codes
func (t DoctorType) Valid() bool {
	for _, known := range DoctorTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TypePage returns the route segment the type is listed under.
// Extra and floating GP clinics share the gp page.
func (t DoctorType) TypePage() string {
	switch t {
	case DoctorTypeGPExtra, DoctorTypeGPFloating:
		return string(DoctorTypeGP)
	default:
		return string(t)
	}
}

// Clinic describes the kind of GP clinic, if any
type Clinic string

const (
	ClinicRegular  Clinic = ""
	ClinicExtra    Clinic = "extra"
	ClinicFloating Clinic = "floating"
)

// Clinic returns the clinic flavour encoded in the type suffix
func (t DoctorType) Clinic() Clinic {
	switch t {
	case DoctorTypeGPExtra:
		return ClinicExtra
	case DoctorTypeGPFloating:
		return ClinicFloating
	default:
		return ClinicRegular
	}
}

// Accepts is whether a doctor currently accepts new patients
type Accepts string

const (
	AcceptsYes Accepts = "y"
	AcceptsNo  Accepts = "n"
)

// Override holds manually curated values that take precedence over the export
type Override struct {
	Accepts      *Accepts         `json:"accepts,omitempty"`
	Availability *decimal.Decimal `json:"availability,omitempty"`
	Note         string           `json:"note,omitempty"`
	Date         string           `json:"date,omitempty"`
}

// Doctor is a validated doctor row. Values are never mutated after validation.
type Doctor struct {
	ID           string          `json:"id"`
	FakeID       string          `json:"fakeId"`
	Name         string          `json:"name"`
	Slug         string          `json:"slugName"`
	Type         DoctorType      `json:"type"`
	TypePage     string          `json:"typePage"`
	Clinic       Clinic          `json:"clinic,omitempty"`
	IDInst       string          `json:"idInst"`
	Accepts      Accepts         `json:"accepts"`
	Availability decimal.Decimal `json:"availability"`
	Load         decimal.Decimal `json:"load"`
	Websites     []string        `json:"websites"`
	Phones       []string        `json:"phones"`
	Email        string          `json:"email,omitempty"`
	OrderForm    string          `json:"orderform,omitempty"`
	Override     Override        `json:"override"`
	Href         string          `json:"href"`
}

// RouteKey is the (typePage, slugName, idInst) triple used as a path key
type RouteKey struct {
	Type     string `json:"type"`
	SlugName string `json:"slugName"`
	IDInst   string `json:"idInst"`
}

// Complete reports whether every segment of the key is present
func (k RouteKey) Complete() bool {
	return k.Type != "" && k.SlugName != "" && k.IDInst != ""
}

// Path renders the key as a site path
func (k RouteKey) Path() string {
	return fmt.Sprintf("/%s/%s/%s", k.Type, k.SlugName, k.IDInst)
}

// RouteKey returns the doctor's route triple
func (d Doctor) RouteKey() RouteKey {
	return RouteKey{Type: d.TypePage, SlugName: d.Slug, IDInst: d.IDInst}
}

// NaturalKey identifies a doctor row independently of its position in the export
func NaturalKey(t DoctorType, idInst, name string) string {
	return fmt.Sprintf("%s|%s|%s", t, idInst, name)
}
