package csvsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
)

func TestParse_HeaderKeysAreLowerCased(t *testing.T) {
	raw := "\ufeffDoctor, Type ,ID_INST\nJan Kos,gp,I1\n"

	result, err := Parse(raw, DefaultParseOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"doctor", "type", "id_inst"}, result.Header)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 2, result.Rows[0].Line)
	assert.Equal(t, "Jan Kos", result.Rows[0].Get("doctor"))
	assert.Equal(t, "I1", result.Rows[0].Get("id_inst"))
	assert.Empty(t, result.Errors)
}

func TestParse_KeepsValuesAsStrings(t *testing.T) {
	raw := "name,lat,availability\nZD,46.05,0.80\n"

	result, err := Parse(raw, DefaultParseOptions())
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, "46.05", result.Rows[0].Fields["lat"])
	assert.Equal(t, "0.80", result.Rows[0].Fields["availability"])
}

func TestParse_MalformedLinesAreReportedNotFatal(t *testing.T) {
	raw := "doctor,type,id_inst\n" +
		"Jan Kos,gp,I1\n" +
		"Ana,gp\n" +
		"Bo\"ris,gp,I2\n" +
		"Boris,den,I3\n"

	result, err := Parse(raw, DefaultParseOptions())
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Jan Kos", result.Rows[0].Get("doctor"))
	assert.Equal(t, "Boris", result.Rows[1].Get("doctor"))
	assert.Equal(t, 5, result.Rows[1].Line)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Reason, "expected 3 fields")
	assert.Equal(t, 4, result.Errors[1].Line)
}

func TestParse_SkipsBlankLines(t *testing.T) {
	raw := "doctor,type\n\nJan Kos,gp\n   \nAna,ped\n"

	result, err := Parse(raw, DefaultParseOptions())
	require.NoError(t, err)

	assert.Len(t, result.Rows, 2)
	assert.Empty(t, result.Errors)
}

func TestParse_CustomDelimiterAndQuotedFields(t *testing.T) {
	raw := "doctor;website\n\"Kos; Jan\";\"a.si, b.si\"\n"

	result, err := Parse(raw, ParseOptions{Delimiter: ';', Header: true})
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Kos; Jan", result.Rows[0].Get("doctor"))
	assert.Equal(t, "a.si, b.si", result.Rows[0].Get("website"))
}

func TestParse_WithoutHeaderUsesColumnPositions(t *testing.T) {
	result, err := Parse("Jan Kos,gp\nAna,ped\n", ParseOptions{Delimiter: ','})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, result.Header)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "ped", result.Rows[1].Get("2"))
}

func TestParse_EmptySource(t *testing.T) {
	_, err := Parse("", DefaultParseOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParse))
}

func TestParse_UnreadableHeader(t *testing.T) {
	_, err := Parse("doctor,\"type\nJan Kos,gp\n", DefaultParseOptions())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeParse, appErr.Type)
	assert.Equal(t, "line 1", appErr.Message)
}

func TestRawRow_GetFallsBackToAliases(t *testing.T) {
	row := entities.RawRow{Fields: map[string]string{"name": "  Jan Kos "}}

	assert.Equal(t, "Jan Kos", row.Get("doctor", "name"))
	assert.Equal(t, "", row.Get("missing"))
}
