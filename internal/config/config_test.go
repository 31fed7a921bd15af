package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FrankfurterURL != "https://api.frankfurter.dev" {
		t.Fatalf("unexpected frankfurter_url %q", cfg.FrankfurterURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected http timeout %v", cfg.HTTPTimeout)
	}
	if cfg.PollInterval != time.Hour {
		t.Fatalf("unexpected poll interval %v", cfg.PollInterval)
	}
	if cfg.RequestDelay != 250*time.Millisecond {
		t.Fatalf("unexpected request delay %v", cfg.RequestDelay)
	}
	if cfg.StorageTTL != 7*24*time.Hour || cfg.StorageCleanupInterval != 12*time.Hour {
		t.Fatalf("unexpected storage durations ttl=%v cleanup=%v", cfg.StorageTTL, cfg.StorageCleanupInterval)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("FRANKFURTER_URL", "http://localhost:8080/")
	t.Setenv("POLL_INTERVAL", "60")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FrankfurterURL != "http://localhost:8080/" {
		t.Fatalf("env override not applied: %q", cfg.FrankfurterURL)
	}
	if cfg.PollInterval != time.Minute {
		t.Fatalf("unexpected poll interval %v", cfg.PollInterval)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected disabled timeout, got %v", cfg.HTTPTimeout)
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	v := viper.New()
	v.Set("poll_interval", 0)
	if _, err := LoadWith(v); err == nil {
		t.Fatalf("expected error for zero poll_interval")
	}
}
