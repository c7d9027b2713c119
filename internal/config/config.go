// Package config loads server configuration from struct defaults layered
// under environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the full server configuration
type Config struct {
	DatabaseURL string          `koanf:"database_url"`
	Port        string          `koanf:"port"`
	Env         string          `koanf:"go_env"`
	Log         LogConfig       `koanf:"log"`
	Analytics   AnalyticsConfig `koanf:"analytics"`
}

// LogConfig configures the zerolog logger
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// AnalyticsConfig holds defaults for the analytics endpoints
type AnalyticsConfig struct {
	// KMeansSeed fixes zone clustering when non-zero; 0 seeds every call randomly
	KMeansSeed          uint64        `koanf:"kmeans_seed"`
	DefaultK            int           `koanf:"default_k"`
	HotspotMinThreshold int           `koanf:"hotspot_min_threshold"`
	WindowDays          int           `koanf:"window_days"`
	Timeout             time.Duration `koanf:"timeout"`
}

func defaultConfig() Config {
	return Config{
		Port: "8080",
		Env:  "development",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Analytics: AnalyticsConfig{
			DefaultK:            5,
			HotspotMinThreshold: 3,
			WindowDays:          30,
			Timeout:             10 * time.Second,
		},
	}
}

// envKeys maps environment variables to koanf paths
var envKeys = map[string]string{
	"database_url":                    "database_url",
	"port":                            "port",
	"go_env":                          "go_env",
	"log_level":                       "log.level",
	"log_format":                      "log.format",
	"analytics_kmeans_seed":           "analytics.kmeans_seed",
	"analytics_default_k":             "analytics.default_k",
	"analytics_hotspot_min_threshold": "analytics.hotspot_min_threshold",
	"analytics_window_days":           "analytics.window_days",
	"analytics_timeout":               "analytics.timeout",
}

// envTransform returns "" for variables that are not configuration keys,
// which makes the env provider skip them.
func envTransform(key string) string {
	return envKeys[strings.ToLower(key)]
}

// Load layers defaults and environment variables, then validates the result
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate rejects values the analytics cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.Analytics.DefaultK < 1 {
		errs = append(errs, fmt.Errorf("analytics.default_k must be at least 1, got %d", c.Analytics.DefaultK))
	}
	if c.Analytics.HotspotMinThreshold < 1 {
		errs = append(errs, fmt.Errorf("analytics.hotspot_min_threshold must be at least 1, got %d", c.Analytics.HotspotMinThreshold))
	}
	if c.Analytics.WindowDays < 0 {
		errs = append(errs, fmt.Errorf("analytics.window_days must not be negative, got %d", c.Analytics.WindowDays))
	}
	if c.Analytics.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("analytics.timeout must be positive, got %s", c.Analytics.Timeout))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the server runs with GO_ENV=production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
