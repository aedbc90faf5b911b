// Package config loads relay configuration from the environment. A local
// .env file is honored when present so development setups need no exported
// variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Relay holds the relay server configuration.
type Relay struct {
	// Port the relay listens on.
	Port string
	// Environment is "development" or "production"; it selects the log
	// encoder.
	Environment string
	// UpstreamURL is the base URL of the completion API.
	UpstreamURL string
	// UpstreamAPIKey authenticates against the completion API. Optional for
	// local upstreams.
	UpstreamAPIKey string
	// UpstreamModel names the completion model.
	UpstreamModel string
	// UpstreamTimeout bounds each upstream call.
	UpstreamTimeout time.Duration
}

// LoadRelay reads the relay configuration from the environment, loading a
// .env file first when one exists.
func LoadRelay() (*Relay, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Relay{
		Port:           envOr("RELAY_PORT", "8090"),
		Environment:    envOr("APP_ENV", "development"),
		UpstreamURL:    envOr("UPSTREAM_API_URL", "https://api.openai.com"),
		UpstreamAPIKey: os.Getenv("UPSTREAM_API_KEY"),
		UpstreamModel:  envOr("UPSTREAM_MODEL", "gpt-4o-mini"),
	}

	timeout := envOr("UPSTREAM_TIMEOUT", "60s")
	parsed, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: %w", timeout, err)
	}
	cfg.UpstreamTimeout = parsed

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
