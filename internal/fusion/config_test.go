package fusion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.InDelta(t, 0.8, cfg.APIConfidence, 0.001)
	assert.Equal(t, 5, cfg.MaxItems)
	assert.Equal(t, 20, cfg.Jobs.ZeroResultFloor)
	assert.Equal(t, -1, cfg.LinkedIn.SearchFloor)
}

func TestLoadConfig_MergesOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fusion.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fusion:
  max_items: 10
  source_weights:
    press_page: 0.9
  jobs:
    zero_result_floor: 30
    low_result_floor: 60
    low_result_threshold: 3
    search_floor: 120
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.MaxItems)
	assert.InDelta(t, 0.9, cfg.Weight(SourcePressPage), 0.001)
	assert.InDelta(t, 0.5, cfg.Weight(SourceCareerPage), 0.001, "unlisted weights keep defaults")
	assert.Equal(t, 30, cfg.Jobs.ZeroResultFloor)
	assert.Equal(t, 50, cfg.Funding.ZeroResultFloor, "untouched dimensions keep defaults")
	assert.InDelta(t, 0.8, cfg.APIConfidence, 0.001)
}

func TestLoadConfig_MissingFileFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWeight_UnknownSourceGetsFloor(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 0.2, cfg.Weight("never-registered"), 0.001)
}
