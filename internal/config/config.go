package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration for the server. Gameplay tuning lives
// in internal/sim; only deployment knobs are environment-driven.
type Config struct {
	Port string `env:"PORT" envDefault:"4000"`

	// PollInterval is the background simulation sweep cadence.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"250ms"`

	// StorePath points at the BoltDB file; empty keeps records in memory.
	StorePath string `env:"STORE_PATH"`

	// StreamInterval is the websocket snapshot cadence.
	StreamInterval time.Duration `env:"STREAM_INTERVAL" envDefault:"200ms"`

	// StreamSessionBudget bounds one websocket session; clients re-subscribe.
	StreamSessionBudget time.Duration `env:"STREAM_SESSION_BUDGET" envDefault:"30s"`

	// Defaults applied when a create request leaves match config unset.
	PlayersPerTeam int `env:"PLAYERS_PER_TEAM" envDefault:"5"`
	GoalsToWin     int `env:"GOALS_TO_WIN" envDefault:"3"`

	Metrics MetricsConfig
}

// MetricsConfig controls the telemetry pipeline.
type MetricsConfig struct {
	Enabled      bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Port         string `env:"METRICS_PORT" envDefault:"9090"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"futsal-sim-service"`
	OtlpEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtlpInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE"`
}

// Load reads configuration from environment variables with the defaults in
// the struct tags.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}
	if cfg.StreamInterval <= 0 {
		cfg.StreamInterval = 200 * time.Millisecond
	}
	if cfg.StreamSessionBudget <= 0 {
		cfg.StreamSessionBudget = 30 * time.Second
	}
	if cfg.PlayersPerTeam < 1 {
		cfg.PlayersPerTeam = 5
	}
	if cfg.GoalsToWin < 1 {
		cfg.GoalsToWin = 3
	}
	return cfg, nil
}
