package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
	if cfg.Server.Address() != "0.0.0.0:8000" {
		t.Errorf("address = %q", cfg.Server.Address())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  host: 127.0.0.1
  port: 9000
store:
  path: /tmp/test.db
scraper:
  cache_ttl: 10m
  fresh_threshold: 25
geocoder:
  user_agent: "skispot-test/1.0"
telemetry:
  logging:
    level: debug
    format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Address() != "127.0.0.1:9000" {
		t.Errorf("address = %q", cfg.Server.Address())
	}
	if cfg.Store.Path != "/tmp/test.db" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if cfg.Scraper.CacheTTL.Std() != 10*time.Minute {
		t.Errorf("cache ttl = %v", cfg.Scraper.CacheTTL)
	}
	if cfg.Scraper.FreshThreshold != 25 {
		t.Errorf("fresh threshold = %d", cfg.Scraper.FreshThreshold)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Telemetry.Logging.Level)
	}

	// Untouched sections keep their defaults
	if cfg.Routing.Timeout.Std() != 10*time.Second {
		t.Errorf("routing timeout = %v", cfg.Routing.Timeout)
	}
	if cfg.Routing.MaxRoutedCandidates != 30 {
		t.Errorf("max routed candidates = %d", cfg.Routing.MaxRoutedCandidates)
	}
	if cfg.Search.RoutingConcurrency != 8 {
		t.Errorf("routing concurrency = %d", cfg.Search.RoutingConcurrency)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("port = %d, want 8000", cfg.Server.Port)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("SKISPOT_DB", "/data/override.db")
	t.Setenv("SKISPOT_ADDR", "127.0.0.1:9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Store.Path != "/data/override.db" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if cfg.Server.Address() != "127.0.0.1:9999" {
		t.Errorf("address = %q", cfg.Server.Address())
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 70000
store:
  path: /tmp/test.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for out-of-range port")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateRequiresGeocoderUserAgent(t *testing.T) {
	cfg := Default()
	cfg.Geocoder.UserAgent = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty geocoder user agent")
	}
}
