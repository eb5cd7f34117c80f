package testsupport

import (
	"path/filepath"
	"testing"

	"rolodex/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithRegion sets the default phone region on the test config.
func WithRegion(region string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Identity.DefaultRegion = region
	}
}

// WithDedupeThreshold overrides the duplicate score threshold.
func WithDedupeThreshold(threshold float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Dedupe.Threshold = threshold
	}
}
