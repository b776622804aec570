package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Scrape.Filter5Stars {
		t.Error("filter_5_stars should default to false")
	}
	if cfg.Scrape.MaxPages != 100 || cfg.Scrape.Workers != 1 {
		t.Errorf("scrape defaults = %+v", cfg.Scrape)
	}
	if cfg.Fetch.MaxAttempts != 3 {
		t.Errorf("max_attempts = %d, want 3", cfg.Fetch.MaxAttempts)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
scrape:
  filter_5_stars: true
  max_pages: 20
fetch:
  max_attempts: 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !cfg.Scrape.Filter5Stars || cfg.Scrape.MaxPages != 20 || cfg.Fetch.MaxAttempts != 5 {
		t.Errorf("loaded config = %+v", cfg)
	}
	// Unset values keep their defaults
	if cfg.Fetch.TimeoutSeconds != 30 {
		t.Errorf("timeout_seconds = %d, want default 30", cfg.Fetch.TimeoutSeconds)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig() of a missing file should fail")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scrape: ["), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() of invalid YAML should fail")
	}
}
