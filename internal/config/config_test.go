package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("load env-only: %v", err)
	}
	if cfg.Server.HTTPAddr != ":8080" {
		t.Fatalf("http_addr=%q", cfg.Server.HTTPAddr)
	}
	if cfg.Cron.Sync != "0 0 0,6,12,18 * * *" {
		t.Fatalf("cron spec=%q", cfg.Cron.Sync)
	}
	if cfg.Cron.StartupDelay != 5*time.Second {
		t.Fatalf("startup delay=%v", cfg.Cron.StartupDelay)
	}
	if cfg.Sync.BatchSize != 10 || cfg.Sync.BatchPause != time.Second {
		t.Fatalf("sync defaults: %+v", cfg.Sync)
	}
	if cfg.RateLimit.FRED.Min != 1500*time.Millisecond || cfg.RateLimit.FRED.Max != 3000*time.Millisecond {
		t.Fatalf("FRED band: %+v", cfg.RateLimit.FRED)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("server:\n  http_addr: \":9999\"\nsync:\n  batch_size: 3\nproviders:\n  fred:\n    api_key: testkey\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPAddr != ":9999" {
		t.Fatalf("http_addr=%q", cfg.Server.HTTPAddr)
	}
	if cfg.Sync.BatchSize != 3 {
		t.Fatalf("batch_size=%d", cfg.Sync.BatchSize)
	}
	if cfg.Providers.FRED.APIKey != "testkey" {
		t.Fatalf("fred key=%q", cfg.Providers.FRED.APIKey)
	}
	// Untouched keys keep their defaults.
	if cfg.Sync.BatchPause != time.Second {
		t.Fatalf("batch_pause=%v", cfg.Sync.BatchPause)
	}
}
