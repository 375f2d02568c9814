package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/dtnitsch/fontfallback/pkg/provider"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Stylesheet is the outcome of a fetch. OK is false when the download failed
// and the font should not be optimized.
type Stylesheet struct {
	OK   bool
	Text string
}

// String returns the stylesheet text, empty when the fetch failed.
func (s Stylesheet) String() string {
	return s.Text
}

type Fetcher struct {
	client   Doer
	provider provider.Provider
	legacyUA string
	modernUA string
	log      *zap.Logger
}

type Option func(*Fetcher)

func WithClient(c Doer) Option {
	return func(f *Fetcher) { f.client = c }
}

func WithProvider(p provider.Provider) Option {
	return func(f *Fetcher) { f.provider = p }
}

func WithUserAgents(legacy, modern string) Option {
	return func(f *Fetcher) {
		f.legacyUA = legacy
		f.modernUA = modern
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{},
		provider: provider.Default(),
		legacyUA: provider.LegacyUserAgent,
		modernUA: provider.ModernUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = zap.NewNop()
	}
	f.log = f.log.Named("fetcher")
	return f
}

// Signatures returns the user agents to request url with, in order. Provider
// stylesheets are requested with the legacy agent first so the modern
// sources end up later in the cascade and win.
func (f *Fetcher) Signatures(url string) []string {
	if f.provider.Recognizes(url) {
		return []string{f.legacyUA, f.modernUA}
	}
	return []string{f.modernUA}
}

// Fetch downloads the stylesheet at url once per signature, strictly one
// after the other, and concatenates the bodies. The first failure stops the
// sequence and yields a failed Stylesheet.
func (f *Fetcher) Fetch(ctx context.Context, url string) Stylesheet {
	var text string
	for _, ua := range f.Signatures(url) {
		body, err := f.GetBytes(ctx, url, ua)
		if err != nil {
			f.log.Warn(fmt.Sprintf("Failed to download the stylesheet for %s. Skipped optimizing this font.", url),
				zap.String("url", url), zap.Error(err))
			return Stylesheet{}
		}
		text += string(body)
	}
	return Stylesheet{OK: true, Text: text}
}

// GetBytes issues a single GET with the given user agent and returns the
// whole body. The status code is not checked.
func (f *Fetcher) GetBytes(ctx context.Context, url, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, nil
}
