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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "stub", cfg.Judge.Backend)
	assert.Equal(t, 12*time.Second, cfg.Judge.Timeout)
	assert.Equal(t, 10, cfg.Routing.ShortDomainLength)
	assert.Equal(t, 0.5, cfg.Routing.ShortDomainConfidence)
	assert.Equal(t, "configs/thresholds.json", cfg.ThresholdsPath)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Telemetry.ExportTimeout)
	assert.Equal(t, 5*time.Second, cfg.Telemetry.BatchTimeout)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9999
judge:
  backend: llm
  model: test-model
thresholds_path: /etc/phishguard/thresholds.json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "llm", cfg.Judge.Backend)
	assert.Equal(t, "test-model", cfg.Judge.Model)
	assert.Equal(t, "/etc/phishguard/thresholds.json", cfg.ThresholdsPath)
	// Untouched sections keep defaults.
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PHISHGUARD_SERVER_PORT", "7777")
	t.Setenv("PHISHGUARD_JUDGE_BACKEND", "llm")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "llm", cfg.Judge.Backend)
}

func TestLoadRejectsInvalidBackend(t *testing.T) {
	t.Setenv("PHISHGUARD_JUDGE_BACKEND", "oracle")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}
