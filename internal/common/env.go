package common

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/dtnitsch/fontfallback/models"
	"github.com/dtnitsch/fontfallback/pkg/caching"
	"github.com/dtnitsch/fontfallback/pkg/fetcher"
	"github.com/dtnitsch/fontfallback/pkg/logging"
	"github.com/dtnitsch/fontfallback/pkg/metrics"
	"github.com/dtnitsch/fontfallback/pkg/override"
	"github.com/dtnitsch/fontfallback/pkg/storage"
)

// Env carries what every command needs: configuration, logger, metrics
// table and file storage. Everything in it is read-only once built.
type Env struct {
	Config  *models.Config
	Log     *zap.Logger
	Table   metrics.Table
	Storage *storage.Storage
}

// Setup loads the config file, applies global flags and builds the logger
// and metrics table.
func Setup(c *cli.Context) (*Env, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	table := metrics.DefaultTable()
	if cfg.MetricsFile != "" {
		table, err = metrics.LoadTableFile(cfg.MetricsFile)
		if err != nil {
			return nil, err
		}
	}
	log.Debug("Metrics table loaded", zap.Int("fonts", len(table)), zap.String("file", cfg.MetricsFile))

	return &Env{Config: cfg, Log: log, Table: table, Storage: &storage.Storage{}}, nil
}

func applyFlags(c *cli.Context, cfg *models.Config) {
	if c.IsSet("metrics") {
		cfg.MetricsFile = c.String("metrics")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if c.Bool("quiet") {
		cfg.LogLevel = "error"
	}
	if c.IsSet("cache-dir") {
		cfg.CacheDir = c.String("cache-dir")
	}
	if c.IsSet("cache-max-age") {
		cfg.CacheMaxAge = c.String("cache-max-age")
	}
	if c.IsSet("database") {
		cfg.Database = c.String("database")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
}

// Fetcher returns the network fetcher, behind the disk cache when a cache
// directory is configured.
func (e *Env) Fetcher() (fetcher.Source, error) {
	f := fetcher.NewFetcher(
		fetcher.WithProvider(e.Config.Provider()),
		fetcher.WithUserAgents(e.Config.UserAgents.Legacy, e.Config.UserAgents.Modern),
		fetcher.WithLogger(e.Log),
	)
	if e.Config.CacheDir == "" {
		return f, nil
	}

	maxAge, err := e.Config.MaxAge()
	if err != nil {
		return nil, err
	}
	cache, err := caching.NewCache(e.Config.CacheDir, maxAge)
	if err != nil {
		return nil, err
	}
	return fetcher.NewCached(f, cache, e.Log), nil
}

// Synthesizer returns the override synthesizer for the configured provider.
func (e *Env) Synthesizer() *override.Synthesizer {
	calc := metrics.NewCalculator(e.Table, e.Config.Fallbacks)
	return override.NewSynthesizer(e.Config.Provider(), calc, e.Log)
}

// Close flushes the logger.
func (e *Env) Close() {
	_ = e.Log.Sync()
}
