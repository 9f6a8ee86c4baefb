package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CLOUD_DIST_TOKEN", "")
	t.Setenv("CLOUD_DIST_BASE_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Equal(t, 200, cfg.PageSize)
	assert.NotEmpty(t, cfg.LogFile)
	assert.NotEmpty(t, cfg.HistoryPath)
}

func TestLoadExplicitPath(t *testing.T) {
	t.Setenv("CLOUD_DIST_TOKEN", "")
	t.Setenv("CLOUD_DIST_BASE_URL", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema":1,"base_url":"https://dist.example.com","token":"abc","page_size":50}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://dist.example.com", cfg.BaseURL)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, 50, cfg.PageSize)
	// Unset fields still get defaults.
	assert.Equal(t, 30, cfg.TimeoutSeconds)
}

func TestEnvOverridesToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema":1,"token":"from-file"}`), 0o600))

	t.Setenv("CLOUD_DIST_TOKEN", "from-env")
	t.Setenv("CLOUD_DIST_BASE_URL", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Token)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("CLOUD_DIST_TOKEN", "")
	t.Setenv("CLOUD_DIST_BASE_URL", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := DefaultConfig()
	cfg.BaseURL = "https://dist.example.com"
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://dist.example.com", loaded.BaseURL)
}
