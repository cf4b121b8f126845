package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSources(t *testing.T) {
	t.Setenv("DOCTORS_CSV_URL", "https://example.org/doctors.csv")
	t.Setenv("INSTITUTIONS_CSV_URL", "https://example.org/institutions.csv")
}

func TestLoad_Sources(t *testing.T) {
	setSources(t)
	t.Setenv("CSV_DELIMITER", ";")
	t.Setenv("SOURCE_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.org/doctors.csv", cfg.Sources.DoctorsURL)
	assert.Equal(t, "https://example.org/institutions.csv", cfg.Sources.InstitutionsURL)
	assert.Equal(t, ';', cfg.Sources.Delimiter)
	assert.Equal(t, 3*time.Second, cfg.Sources.Timeout)
}

func TestLoad_Defaults(t *testing.T) {
	setSources(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ',', cfg.Sources.Delimiter)
	assert.Equal(t, 10*time.Minute, cfg.Regeneration.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Regeneration.SnapshotTTL)
	assert.Equal(t, "http://localhost:8108", cfg.Typesense.URL)
	assert.False(t, cfg.Typesense.Enabled)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
}

func TestLoad_TabDelimiter(t *testing.T) {
	setSources(t)
	t.Setenv("CSV_DELIMITER", `\t`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, '\t', cfg.Sources.Delimiter)
}

func TestLoad_MissingSources(t *testing.T) {
	t.Setenv("DOCTORS_CSV_URL", "")
	t.Setenv("INSTITUTIONS_CSV_URL", "https://example.org/institutions.csv")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	setSources(t)
	t.Setenv("REGENERATION_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Regeneration.Interval)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	setSources(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)

	t.Setenv("ALLOWED_ORIGINS", "https://zdravniki.si, ,https://staging.zdravniki.si")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://zdravniki.si", "https://staging.zdravniki.si"}, cfg.Server.AllowedOrigins)
}
