package services

import (
	"fmt"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
)

// JoinDoctors attaches each doctor's institution by value. The institution
// index is built once, so the join is linear in both inputs. Doctors whose
// id_inst has no match are kept with an unresolved marker and an empty
// institution, and reported as diagnostics. Doctor order is preserved.
func JoinDoctors(doctors []entities.Doctor, institutions []entities.Institution) ([]entities.JoinedDoctor, []entities.Diagnostic) {
	byID := make(map[string]*entities.Institution, len(institutions))
	for i := range institutions {
		if _, exists := byID[institutions[i].IDInst]; !exists {
			byID[institutions[i].IDInst] = &institutions[i]
		}
	}

	joined := make([]entities.JoinedDoctor, 0, len(doctors))
	var diagnostics []entities.Diagnostic

	for _, doctor := range doctors {
		institution, ok := byID[doctor.IDInst]
		if !ok {
			joined = append(joined, entities.JoinedDoctor{
				Doctor:     doctor,
				Resolution: entities.ResolutionUnresolved,
			})
			diagnostics = append(diagnostics, entities.Diagnostic{
				Stage:      entities.StageJoin,
				Source:     entities.SourceDoctors,
				Identifier: doctor.ID,
				Kind:       entities.DiagnosticUnresolvedReference,
				Reason:     fmt.Sprintf("institution %q not found", doctor.IDInst),
			})
			continue
		}

		joined = append(joined, entities.JoinedDoctor{
			Doctor:      doctor,
			Provider:    institution.Name,
			Institution: copyInstitution(institution),
			Resolution:  entities.ResolutionResolved,
		})
	}

	return joined, diagnostics
}

// copyInstitution detaches the value from the validated slice so joined
// doctors share no mutable state with each other.
func copyInstitution(in *entities.Institution) entities.Institution {
	out := *in
	if in.Location.Geo != nil {
		geo := *in.Location.Geo
		out.Location.Geo = &geo
	}
	out.Phones = append([]string(nil), in.Phones...)
	out.Websites = append([]string(nil), in.Websites...)
	return out
}
