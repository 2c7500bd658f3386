// Package config loads cltags settings from defaults, an optional
// .cltags.yaml file and CLTAGS_* environment variables.
package config

import (
	"errors"
	"fmt"

	"github.com/gobwas/glob"
)

// DefaultBatchSize is the number of pending facts that triggers a flush.
const DefaultBatchSize = 50000

// Config holds every tunable the CLI and the engine read.
type Config struct {
	DB            string   `yaml:"db" mapstructure:"db"`                         // index database path
	BatchSize     int      `yaml:"batch_size" mapstructure:"batch_size"`         // 0 flushes only at close
	CacheCapacity int      `yaml:"cache_capacity" mapstructure:"cache_capacity"` // 0 means unbounded
	Exclude       []string `yaml:"exclude" mapstructure:"exclude"`               // globs over file paths
	LogLevel      string   `yaml:"log_level" mapstructure:"log_level"`
	Progress      bool     `yaml:"progress" mapstructure:"progress"`
	MetricsFile   string   `yaml:"metrics_file" mapstructure:"metrics_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DB:        "CLTAGS",
		BatchSize: DefaultBatchSize,
		Exclude:   []string{},
		LogLevel:  "warn",
	}
}

// Validate reports every problem found in cfg, joined into one error.
func Validate(cfg *Config) error {
	var errs []error
	if cfg.DB == "" {
		errs = append(errs, errors.New("db: must not be empty"))
	}
	if cfg.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("batch_size: must be >= 0, got %d", cfg.BatchSize))
	}
	if cfg.CacheCapacity < 0 {
		errs = append(errs, fmt.Errorf("cache_capacity: must be >= 0, got %d", cfg.CacheCapacity))
	}
	for _, p := range cfg.Exclude {
		if _, err := glob.Compile(p, '/'); err != nil {
			errs = append(errs, fmt.Errorf("exclude: bad pattern %q: %w", p, err))
		}
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error", "silent", "quiet", "off":
	default:
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", cfg.LogLevel))
	}
	return errors.Join(errs...)
}
