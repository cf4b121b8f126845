package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "ascii lower-cased", input: "Jan Kos", expected: "jan kos"},
		{name: "carons stripped", input: "Nováková Čečič", expected: "novakova cecic"},
		{name: "trimmed", input: "  Anže  ", expected: "anze"},
		{name: "d with stroke", input: "Đurđa", expected: "durda"},
		{name: "already normalized", input: "boris", expected: "boris"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{"Škofja Loka", "ŽELEZNIKI", "dr. Marija Šušteršič"} {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), s)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "Jan Kos", expected: "jan-kos"},
		{input: "Marija   Šušteršič", expected: "marija-sustersic"},
		{input: "dr. Ana Novak-Kranjc", expected: "dr-ana-novak-kranjc"},
		{input: "  ", expected: ""},
		{input: "Ana (nadomeščanje)", expected: "ana-nadomescanje"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestSlugify_Deterministic(t *testing.T) {
	assert.Equal(t, Slugify("Nováková Marta"), Slugify("Nováková Marta"))
}

func TestCompareNormalized(t *testing.T) {
	assert.Less(t, CompareNormalized("Ana", "Boris"), 0)
	assert.Greater(t, CompareNormalized("Boris", "Anže"), 0)
	assert.Equal(t, 0, CompareNormalized("ANA", "ana"))
	assert.Equal(t, 0, CompareNormalized("Čeh", "ceh"))
}
