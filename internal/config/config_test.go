// Copyright 2025 James Ross
package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("LAUNCHERD_PLUGINS_MAX_PLUGINS")
	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Plugins.MaxPlugins != 64 {
		t.Fatalf("expected default max_plugins 64, got %d", cfg.Plugins.MaxPlugins)
	}
	if cfg.Plugins.Dir == "" {
		t.Fatalf("expected default plugins dir")
	}
	if cfg.Search.FrecencyHalfLife != 72*time.Hour {
		t.Fatalf("expected default frecency half-life 72h, got %s", cfg.Search.FrecencyHalfLife)
	}
}

func TestValidateFails(t *testing.T) {
	cfg := defaultConfig()
	cfg.Plugins.MaxPlugins = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for plugins.max_plugins < 1")
	}
	cfg = defaultConfig()
	cfg.Plugins.IdleTimeout = 3 * time.Second
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for idle_timeout < 5s")
	}
	cfg = defaultConfig()
	cfg.Search.FrecencyHalfLife = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for frecency_half_life <= 0")
	}
	cfg = defaultConfig()
	cfg.Observability.MetricsPort = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for invalid metrics_port")
	}
}
