package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRelay_Defaults(t *testing.T) {
	t.Setenv("RELAY_PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("UPSTREAM_API_URL", "")
	t.Setenv("UPSTREAM_API_KEY", "")
	t.Setenv("UPSTREAM_MODEL", "")
	t.Setenv("UPSTREAM_TIMEOUT", "")

	cfg, err := LoadRelay()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "https://api.openai.com", cfg.UpstreamURL)
	assert.Empty(t, cfg.UpstreamAPIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.UpstreamModel)
	assert.Equal(t, "60s", cfg.UpstreamTimeout.String())
}

func TestLoadRelay_Overrides(t *testing.T) {
	t.Setenv("RELAY_PORT", "9100")
	t.Setenv("APP_ENV", "production")
	t.Setenv("UPSTREAM_API_URL", "http://localhost:11434")
	t.Setenv("UPSTREAM_API_KEY", "sk-test")
	t.Setenv("UPSTREAM_MODEL", "llama3")
	t.Setenv("UPSTREAM_TIMEOUT", "2m")

	cfg, err := LoadRelay()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "http://localhost:11434", cfg.UpstreamURL)
	assert.Equal(t, "sk-test", cfg.UpstreamAPIKey)
	assert.Equal(t, "llama3", cfg.UpstreamModel)
	assert.Equal(t, "2m0s", cfg.UpstreamTimeout.String())
}

func TestLoadRelay_InvalidTimeout(t *testing.T) {
	t.Setenv("UPSTREAM_TIMEOUT", "sixty seconds")

	_, err := LoadRelay()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPSTREAM_TIMEOUT")
}
