package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
)

func named(names ...string) []entities.JoinedDoctor {
	doctors := make([]entities.JoinedDoctor, len(names))
	for i, name := range names {
		doctors[i] = entities.JoinedDoctor{Doctor: entities.Doctor{Name: name, FakeID: name}}
	}
	return doctors
}

func letters(groups []entities.DoctorGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Letter
	}
	return out
}

func names(doctors []entities.JoinedDoctor) []string {
	out := make([]string, len(doctors))
	for i, d := range doctors {
		out[i] = d.Name
	}
	return out
}

func TestGroupAndSort_GroupsByFirstLetter(t *testing.T) {
	groups := GroupAndSort(named("Boris", "Anže", "Ana"))

	require.Equal(t, []string{"A", "B"}, letters(groups))
	assert.Equal(t, []string{"Ana", "Anže"}, names(groups[0].Doctors))
	assert.Equal(t, []string{"Boris"}, names(groups[1].Doctors))
}

func TestGroupAndSort_StableForEqualKeys(t *testing.T) {
	doctors := named("Ana", "ana", "ANA")
	doctors[0].FakeID, doctors[1].FakeID, doctors[2].FakeID = "first", "second", "third"

	groups := GroupAndSort(doctors)

	require.Len(t, groups, 1)
	ids := []string{groups[0].Doctors[0].FakeID, groups[0].Doctors[1].FakeID, groups[0].Doctors[2].FakeID}
	assert.Equal(t, []string{"first", "second", "third"}, ids)
}

func TestGroupAndSort_SkipsEmptyNames(t *testing.T) {
	groups := GroupAndSort(named("", "  ", "Eva"))

	require.Equal(t, []string{"E"}, letters(groups))
	assert.Len(t, groups[0].Doctors, 1)
}

func TestGroupAndSort_DiacriticLettersStayDistinct(t *testing.T) {
	groups := GroupAndSort(named("Čeh Marko", "Zupan Eva", "Cvetko Ana", "čuk Tina"))

	assert.Equal(t, []string{"C", "Č", "Z"}, letters(groups))
	assert.Equal(t, []string{"Čeh Marko", "čuk Tina"}, names(groups[1].Doctors))
}

func TestGroupAndSort_Empty(t *testing.T) {
	assert.Empty(t, GroupAndSort(nil))
}

func TestGroupAndSort_DoesNotReorderInput(t *testing.T) {
	input := named("Boris", "Ana")
	GroupAndSort(input)

	assert.Equal(t, []string{"Boris", "Ana"}, names(input))
}
