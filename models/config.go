// Package models defines data structures for configuration.
package models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/fontfallback/pkg/logging"
	"github.com/dtnitsch/fontfallback/pkg/metrics"
	"github.com/dtnitsch/fontfallback/pkg/provider"
)

const DefaultConfigFile = "fontfallback.yaml"

// UserAgents are the client signatures sent to stylesheet servers.
type UserAgents struct {
	Legacy string `yaml:"legacy"`
	Modern string `yaml:"modern"`
}

// Config is the runtime configuration. File values are overridden by CLI
// flags.
type Config struct {
	ProviderPrefix string            `yaml:"provider_prefix"`
	MetricsFile    string            `yaml:"metrics_file,omitempty"` // empty: embedded table
	Workers        int               `yaml:"workers"`
	CacheDir       string            `yaml:"cache_dir,omitempty"` // empty: no fetch cache
	CacheMaxAge    string            `yaml:"cache_max_age"`
	Database       string            `yaml:"database"`
	LogLevel       string            `yaml:"log_level"`
	LogFormat      string            `yaml:"log_format"`
	UserAgents     UserAgents        `yaml:"user_agents"`
	Fallbacks      metrics.Fallbacks `yaml:"fallbacks"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		ProviderPrefix: provider.GoogleFontsPrefix,
		Workers:        4,
		CacheMaxAge:    "24h",
		Database:       "fontfallback.db",
		LogLevel:       "info",
		LogFormat:      logging.FormatConsole,
		UserAgents: UserAgents{
			Legacy: provider.LegacyUserAgent,
			Modern: provider.ModernUserAgent,
		},
		Fallbacks: metrics.DefaultFallbacks(),
	}
}

// LoadConfig reads a YAML config over the defaults. A missing file is not an
// error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var err error
	if c.ProviderPrefix == "" {
		err = multierr.Append(err, errors.New("provider_prefix must not be empty"))
	}
	if c.Workers < 1 {
		err = multierr.Append(err, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if _, perr := c.MaxAge(); perr != nil {
		err = multierr.Append(err, perr)
	}
	if _, lerr := logging.ParseLevel(c.LogLevel); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	if c.LogFormat != logging.FormatConsole && c.LogFormat != logging.FormatJSON {
		err = multierr.Append(err, fmt.Errorf("log_format must be %q or %q", logging.FormatConsole, logging.FormatJSON))
	}
	if c.UserAgents.Legacy == "" || c.UserAgents.Modern == "" {
		err = multierr.Append(err, errors.New("user_agents.legacy and user_agents.modern must be set"))
	}
	if c.Fallbacks.Serif == "" || c.Fallbacks.SansSerif == "" {
		err = multierr.Append(err, errors.New("fallbacks.serif and fallbacks.sans_serif must be set"))
	}
	return err
}

// MaxAge parses CacheMaxAge.
func (c *Config) MaxAge() (time.Duration, error) {
	d, err := time.ParseDuration(c.CacheMaxAge)
	if err != nil {
		return 0, fmt.Errorf("invalid cache_max_age %q: %w", c.CacheMaxAge, err)
	}
	return d, nil
}

// Provider returns the configured stylesheet provider.
func (c *Config) Provider() provider.Provider {
	return provider.Provider{Prefix: c.ProviderPrefix}
}
