package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cacheflow/internal/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := config.NewDefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, config.DefaultStreamBuffer, cfg.StreamBuffer)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		configMod func(*config.Config)
		err       error
	}{
		{"port_zero", func(c *config.Config) { c.Port = 0 }, config.ErrInvalidPort},
		{"port_too_high", func(c *config.Config) { c.Port = 70000 }, config.ErrInvalidPort},
		{"log_level", func(c *config.Config) { c.LogLevel = "loud" }, config.ErrInvalidLogLevel},
		{"log_format", func(c *config.Config) { c.LogFormat = "xml" }, config.ErrInvalidLogFormat},
		{"stream_buffer", func(c *config.Config) { c.StreamBuffer = 0 }, config.ErrInvalidStreamBuffer},
		{"metrics_path", func(c *config.Config) { c.MetricsPath = "metrics" }, config.ErrInvalidMetricsPath},
		{"shutdown_timeout", func(c *config.Config) { c.ShutdownTimeout = 0 }, config.ErrInvalidShutdownTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			tt.configMod(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.err)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CACHEFLOW_HOST", "0.0.0.0")
	t.Setenv("CACHEFLOW_PORT", "9090")
	t.Setenv("CACHEFLOW_LOG_LEVEL", "debug")
	t.Setenv("CACHEFLOW_LOG_FORMAT", "JSON")
	t.Setenv("CACHEFLOW_STREAM_BUFFER", "64")
	t.Setenv("CACHEFLOW_SHUTDOWN_TIMEOUT", "2s")

	cfg := config.NewDefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, 64, cfg.StreamBuffer)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvErrors(t *testing.T) {
	tests := map[string]string{
		"CACHEFLOW_PORT":             "eighty",
		"CACHEFLOW_STREAM_BUFFER":    "100000",
		"CACHEFLOW_SHUTDOWN_TIMEOUT": "soon",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			err := config.NewDefaultConfig().LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
