package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "4000" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Fatalf("pollInterval = %s", cfg.PollInterval)
	}
	if cfg.StreamInterval != 200*time.Millisecond {
		t.Fatalf("streamInterval = %s", cfg.StreamInterval)
	}
	if cfg.StreamSessionBudget != 30*time.Second {
		t.Fatalf("sessionBudget = %s", cfg.StreamSessionBudget)
	}
	if cfg.StorePath != "" {
		t.Fatalf("storePath = %q", cfg.StorePath)
	}
	if cfg.PlayersPerTeam != 5 || cfg.GoalsToWin != 3 {
		t.Fatalf("match defaults = %d/%d", cfg.PlayersPerTeam, cfg.GoalsToWin)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Port != "9090" {
		t.Fatalf("metrics = %+v", cfg.Metrics)
	}
	if cfg.Metrics.ServiceName != "futsal-sim-service" {
		t.Fatalf("serviceName = %q", cfg.Metrics.ServiceName)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("POLL_INTERVAL", "1s")
	t.Setenv("STORE_PATH", "/tmp/matches.db")
	t.Setenv("PLAYERS_PER_TEAM", "3")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.PollInterval != time.Second {
		t.Fatalf("pollInterval = %s", cfg.PollInterval)
	}
	if cfg.StorePath != "/tmp/matches.db" {
		t.Fatalf("storePath = %q", cfg.StorePath)
	}
	if cfg.PlayersPerTeam != 3 {
		t.Fatalf("playersPerTeam = %d", cfg.PlayersPerTeam)
	}
	if cfg.Metrics.Enabled {
		t.Fatal("metrics still enabled")
	}
}

func TestLoadFloorsInvalidValues(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "-5s")
	t.Setenv("PLAYERS_PER_TEAM", "0")
	t.Setenv("GOALS_TO_WIN", "-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.PollInterval != 250*time.Millisecond {
		t.Fatalf("pollInterval = %s", cfg.PollInterval)
	}
	if cfg.PlayersPerTeam != 5 || cfg.GoalsToWin != 3 {
		t.Fatalf("match defaults = %d/%d", cfg.PlayersPerTeam, cfg.GoalsToWin)
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
