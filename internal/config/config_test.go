package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // keep a developer's tablecrm.yaml out of the test

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://app.tablecrm.com", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.Token)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "tablecrm.log", cfg.Log.Output)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TABLECRM_BASE_URL", "http://localhost:8080/")
	t.Setenv("TABLECRM_TOKEN", "devtoken")
	t.Setenv("TABLECRM_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, "devtoken", cfg.Token)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablecrm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: http://crmdev:8080
timeout: 3s
metrics_addr: ":9102"
log:
  level: warn
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://crmdev:8080", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, ":9102", cfg.MetricsAddr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablecrm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: -5s\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
