package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CLTAGS_BATCH_SIZE.
const EnvPrefix = "CLTAGS"

// Load builds a Config with the following priority (highest to lowest):
//  1. Environment variables (CLTAGS_*)
//  2. Config file: configFile if set, otherwise .cltags.yaml in dir
//  3. Default values
//
// A missing .cltags.yaml is fine; a missing explicit configFile is not.
func Load(dir, configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".cltags")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("db", d.DB)
	v.SetDefault("batch_size", d.BatchSize)
	v.SetDefault("cache_capacity", d.CacheCapacity)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("progress", d.Progress)
	v.SetDefault("metrics_file", d.MetricsFile)
}
