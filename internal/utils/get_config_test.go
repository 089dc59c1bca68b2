package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"DIARY_URL: http://diary.local/\n"+
			"DIARY_API_KEY: file-key\n"+
			"BREAKFAST_WINDOW: 06:00-09:00\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// Trailing slash is stripped so path joins are uniform.
	assert.Equal(t, "http://diary.local", cfg.DiaryURL)
	assert.Equal(t, "file-key", cfg.DiaryAPIKey)
	assert.Equal(t, "06:00-09:00", cfg.BreakfastWindow)
	// Unset fields fall back to defaults.
	assert.Equal(t, "11:00-13:00", cfg.LunchWindow)
	assert.Equal(t, "8090", cfg.StatusPort)
	assert.False(t, cfg.JournalEnabled())
	assert.False(t, cfg.AlertsEnabled())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"DIARY_URL: http://diary.local\nDIARY_API_KEY: file-key\n"), 0o644))

	t.Setenv("DIARY_API_KEY", "env-key")
	t.Setenv("SCALE_URL", "http://scale.local/weight")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.DiaryAPIKey)
	assert.Equal(t, "http://scale.local/weight", cfg.ScaleURL)
}

func TestLoadConfigMissingFileIsFine(t *testing.T) {
	t.Setenv("DIARY_URL", "http://diary.local")
	t.Setenv("DIARY_API_KEY", "env-key")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://diary.local", cfg.DiaryURL)
	assert.Equal(t, "env-key", cfg.DiaryAPIKey)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
