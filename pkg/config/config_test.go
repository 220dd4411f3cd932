package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WIZARD_STATE_TTL", "")
	t.Setenv("IMPORT_DEFAULT_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 24*time.Hour, cfg.Wizard.StateTTL)
	assert.Equal(t, 10, cfg.Import.SampleErrors)
	assert.EqualValues(t, 5*1024*1024, cfg.Import.MaxFileSizeBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WIZARD_STATE_TTL", "90m")
	t.Setenv("ALLOWED_ORIGINS", "https://pal.example.edu, http://localhost:3000 ,")
	t.Setenv("JWT_EXPIRATION", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.Wizard.StateTTL)
	assert.Equal(t, []string{"https://pal.example.edu", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a ,,b"))
}
