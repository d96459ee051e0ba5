package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.API.TimeoutSecs)
	assert.Equal(t, 3, cfg.API.MaxAttempts)
	assert.Equal(t, 3, cfg.Scrape.MaxConcurrentPages)
	assert.Equal(t, 11, cfg.Pipeline.TargetMinEmployees)
	assert.Equal(t, 200, cfg.Pipeline.TargetMaxEmployees)
	assert.True(t, cfg.Search.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pipeline:
  target_min_employees: 25
  target_max_employees: 500
search:
  enabled: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Pipeline.TargetMinEmployees)
	assert.Equal(t, 500, cfg.Pipeline.TargetMaxEmployees)
	assert.False(t, cfg.Search.Enabled)
	assert.Equal(t, 20, cfg.API.TimeoutSecs, "untouched keys keep defaults")
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXPO_API_KEY")
	assert.Contains(t, err.Error(), "EXPO_API_HOST")

	cfg.API.Key = "k"
	cfg.API.Host = "h"
	assert.NoError(t, cfg.Validate())
}
