package services

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/pkg/utils"
)

// GroupAndSort orders doctors by normalized name and buckets them by the
// upper-cased first letter of the display name. Equal names keep their input
// order. Doctors with an empty name are left out.
func GroupAndSort(doctors []entities.JoinedDoctor) []entities.DoctorGroup {
	cmp := utils.AcquireComparator()
	defer cmp.Release()

	sorted := make([]entities.JoinedDoctor, 0, len(doctors))
	for _, doctor := range doctors {
		if groupKey(doctor.Name) != "" {
			sorted = append(sorted, doctor)
		}
	}

	keys := make([]string, len(sorted))
	for i := range sorted {
		keys[i] = utils.Normalize(sorted[i].Name)
	}
	sort.Stable(byKey{doctors: sorted, keys: keys, cmp: cmp})

	index := make(map[string]int)
	var groups []entities.DoctorGroup
	for _, doctor := range sorted {
		letter := groupKey(doctor.Name)
		i, ok := index[letter]
		if !ok {
			i = len(groups)
			index[letter] = i
			groups = append(groups, entities.DoctorGroup{Letter: letter})
		}
		groups[i].Doctors = append(groups[i].Doctors, doctor)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Letter, groups[j].Letter
		if c := cmp.CompareNormalized(a, b); c != 0 {
			return c < 0
		}
		return cmp.Compare(a, b) < 0
	})

	return groups
}

func groupKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(name)
	return strings.ToUpper(string(r))
}

// byKey sorts doctors by precomputed normalized names
type byKey struct {
	doctors []entities.JoinedDoctor
	keys    []string
	cmp     *utils.Comparator
}

func (b byKey) Len() int { return len(b.doctors) }

func (b byKey) Less(i, j int) bool {
	return b.cmp.Compare(b.keys[i], b.keys[j]) < 0
}

func (b byKey) Swap(i, j int) {
	b.doctors[i], b.doctors[j] = b.doctors[j], b.doctors[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
