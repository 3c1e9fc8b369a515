package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFillsZeroTimeouts(t *testing.T) {
	cfg := &Config{}
	cfg.normalize()
	assert.Equal(t, 30*time.Second, cfg.ExportTimeout)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
}

func TestNormalizeKeepsConfiguredTimeouts(t *testing.T) {
	cfg := &Config{
		ExportTimeout: 10 * time.Second,
		BatchTimeout:  2 * time.Second,
	}
	cfg.normalize()
	assert.Equal(t, 10*time.Second, cfg.ExportTimeout)
	assert.Equal(t, 2*time.Second, cfg.BatchTimeout)
}

func TestInitializeOpenTelemetryDisabled(t *testing.T) {
	provider, err := InitializeOpenTelemetry(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, provider.TracerProvider)
	require.NoError(t, provider.Shutdown(context.Background()))
}
