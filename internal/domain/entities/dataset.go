package entities

import "time"

// Source names one of the two CSV exports
type Source string

const (
	SourceDoctors      Source = "doctors"
	SourceInstitutions Source = "institutions"
)

// Stage names the pipeline step that recorded a diagnostic
type Stage string

const (
	StageParse    Stage = "parse"
	StageValidate Stage = "validate"
	StageJoin     Stage = "join"
)

// DiagnosticKind classifies a recovered, row-level condition
type DiagnosticKind string

const (
	DiagnosticParseFailure        DiagnosticKind = "parse_failure"
	DiagnosticValidationFailure   DiagnosticKind = "validation_failure"
	DiagnosticDuplicate           DiagnosticKind = "duplicate"
	DiagnosticInvalidGeolocation  DiagnosticKind = "invalid_geolocation"
	DiagnosticUnresolvedReference DiagnosticKind = "unresolved_reference"
)

// Diagnostic is surfaced to build/operational logs, never to end users
type Diagnostic struct {
	Stage      Stage          `json:"stage"`
	Source     Source         `json:"source"`
	Line       int            `json:"line,omitempty"`
	Identifier string         `json:"identifier,omitempty"`
	Kind       DiagnosticKind `json:"kind"`
	Reason     string         `json:"reason"`
}

// Dropped reports whether the diagnostic removed a row from the output
func (d Diagnostic) Dropped() bool {
	switch d.Kind {
	case DiagnosticParseFailure, DiagnosticValidationFailure, DiagnosticDuplicate:
		return true
	default:
		return false
	}
}

// RegenerationReport summarizes one pipeline run
type RegenerationReport struct {
	DoctorRows      int          `json:"doctorRows"`
	InstitutionRows int          `json:"institutionRows"`
	Doctors         int          `json:"doctors"`
	Institutions    int          `json:"institutions"`
	DroppedDoctors  int          `json:"droppedDoctors"`
	DroppedInsts    int          `json:"droppedInstitutions"`
	Unresolved      int          `json:"unresolved"`
	WithoutGeo      int          `json:"withoutGeolocation"`
	Diagnostics     []Diagnostic `json:"diagnostics"`
}

// Dataset is the immutable, joined entity set produced by one regeneration.
// It is replaced wholesale, never edited in place.
type Dataset struct {
	Version     string             `json:"version"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Doctors     []JoinedDoctor     `json:"doctors"`
	Report      RegenerationReport `json:"report"`
}
