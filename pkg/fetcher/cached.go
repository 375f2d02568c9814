package fetcher

import (
	"context"

	"go.uber.org/zap"
)

// Source is anything that can produce a stylesheet for a URL.
type Source interface {
	Fetch(ctx context.Context, url string) Stylesheet
}

// Cache stores stylesheet bodies by URL.
type Cache interface {
	Get(url string) ([]byte, bool)
	Set(url string, data []byte) error
}

// Cached serves stylesheets from a cache and falls back to another Source.
// Failed fetches are never stored.
type Cached struct {
	source Source
	cache  Cache
	log    *zap.Logger
}

func NewCached(source Source, cache Cache, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{source: source, cache: cache, log: log.Named("cache")}
}

func (c *Cached) Fetch(ctx context.Context, url string) Stylesheet {
	if data, ok := c.cache.Get(url); ok {
		c.log.Debug("Stylesheet cache hit", zap.String("url", url))
		return Stylesheet{OK: true, Text: string(data)}
	}

	sheet := c.source.Fetch(ctx, url)
	if !sheet.OK {
		return sheet
	}
	if err := c.cache.Set(url, []byte(sheet.Text)); err != nil {
		c.log.Warn("Failed to cache stylesheet", zap.String("url", url), zap.Error(err))
	}
	return sheet
}
