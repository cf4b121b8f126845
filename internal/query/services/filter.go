package services

import (
	"strings"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/pkg/utils"
)

// Predicate reports whether a doctor passes a filter
type Predicate func(entities.JoinedDoctor) bool

// BuildFilter returns the AND of the acceptance, bounds, search and type
// predicates for state. Inactive dimensions are vacuously true, so the zero
// state with Accepts "all" keeps every doctor. The state is copied; later
// changes to the caller's slices do not affect the predicate.
func BuildFilter(state entities.FilterState) Predicate {
	checks := make([]Predicate, 0, 4)

	if p := acceptsPredicate(state.Accepts); p != nil {
		checks = append(checks, p)
	}
	if state.Bounds != nil {
		checks = append(checks, boundsPredicate(*state.Bounds))
	}
	if p := searchPredicate(state.Search); p != nil {
		checks = append(checks, p)
	}
	if p := typesPredicate(state.Types); p != nil {
		checks = append(checks, p)
	}

	return func(doctor entities.JoinedDoctor) bool {
		for _, check := range checks {
			if !check(doctor) {
				return false
			}
		}
		return true
	}
}

// Apply returns the doctors accepted by p, keeping input order
func Apply(doctors []entities.JoinedDoctor, p Predicate) []entities.JoinedDoctor {
	out := make([]entities.JoinedDoctor, 0, len(doctors))
	for _, doctor := range doctors {
		if p(doctor) {
			out = append(out, doctor)
		}
	}
	return out
}

func acceptsPredicate(accepts entities.AcceptsFilter) Predicate {
	switch accepts {
	case entities.AcceptsFilterYes, entities.AcceptsFilterNo:
		want := entities.Accepts(accepts)
		return func(doctor entities.JoinedDoctor) bool {
			return doctor.Accepts == want
		}
	default:
		return nil
	}
}

// Doctors without a geolocation never match once bounds are active.
func boundsPredicate(bounds entities.Bounds) Predicate {
	return func(doctor entities.JoinedDoctor) bool {
		geo, ok := doctor.Geo()
		return ok && bounds.Contains(geo)
	}
}

func searchPredicate(search string) Predicate {
	term := utils.Normalize(search)
	if term == "" {
		return nil
	}
	return func(doctor entities.JoinedDoctor) bool {
		for _, field := range [...]string{doctor.Name, doctor.Provider, doctor.FullAddress()} {
			if field != "" && strings.Contains(utils.Normalize(field), term) {
				return true
			}
		}
		return false
	}
}

func typesPredicate(types []entities.DoctorType) Predicate {
	if len(types) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(types))
	for _, t := range types {
		wanted[string(t)] = struct{}{}
	}
	return func(doctor entities.JoinedDoctor) bool {
		if _, ok := wanted[string(doctor.Type)]; ok {
			return true
		}
		_, ok := wanted[doctor.TypePage]
		return ok
	}
}
