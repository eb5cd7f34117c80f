package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rolodex/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Identity.DefaultRegion != "1" {
		t.Fatalf("default region = %q, want 1", cfg.Identity.DefaultRegion)
	}
	if cfg.Dedupe.Threshold != 0.75 {
		t.Fatalf("default threshold = %v, want 0.75", cfg.Dedupe.Threshold)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"

[identity]
default_region = "44"

[dedupe]
threshold = 0.6

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Identity.DefaultRegion != "44" {
		t.Fatalf("region = %q, want 44", cfg.Identity.DefaultRegion)
	}
	if cfg.Dedupe.Threshold != 0.6 {
		t.Fatalf("threshold = %v, want 0.6", cfg.Dedupe.Threshold)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if !strings.HasSuffix(cfg.DatabasePath(), filepath.Join("data", "contacts.db")) {
		t.Fatalf("database path = %q", cfg.DatabasePath())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"threshold above one", func(c *config.Config) { c.Dedupe.Threshold = 1.5 }},
		{"negative weight", func(c *config.Config) { c.Dedupe.NameWeight = -0.1 }},
		{"weights not summing", func(c *config.Config) { c.Dedupe.ChatWeight = 0.5 }},
		{"non-digit region", func(c *config.Config) { c.Identity.DefaultRegion = "US" }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "yaml" }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "verbose" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when sample exists")
	}
}
