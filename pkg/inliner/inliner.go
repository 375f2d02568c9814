// Package inliner replaces provider stylesheet links in an HTML document with
// inline style blocks built from the font manifest plus override CSS.
package inliner

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/dtnitsch/fontfallback/pkg/manifest"
	"github.com/dtnitsch/fontfallback/pkg/override"
	"github.com/dtnitsch/fontfallback/pkg/provider"
)

// Result is the rewritten document and the hrefs that were inlined.
type Result struct {
	HTML    string
	Inlined []string
	Skipped []string
}

type Inliner struct {
	provider provider.Provider
	manifest manifest.Manifest
	synth    *override.Synthesizer
	log      *zap.Logger
}

// New returns an Inliner. synth may be nil to inline stylesheets without
// override CSS.
func New(p provider.Provider, m manifest.Manifest, synth *override.Synthesizer, log *zap.Logger) *Inliner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Inliner{provider: p, manifest: m, synth: synth, log: log.Named("inliner")}
}

// Inline reads an HTML document and swaps every provider stylesheet link that
// has manifest content for a <style data-href="..."> element. Links without
// manifest content, or whose content contains "</style", are left untouched.
func (in *Inliner) Inline(r io.Reader) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var res Result
	doc.Find(`link[rel~="stylesheet"][href]`).Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !in.provider.Recognizes(href) {
			return
		}
		content := in.manifest.Lookup(href)
		if content == "" {
			in.log.Debug("No manifest content for stylesheet", zap.String("href", href))
			res.Skipped = append(res.Skipped, href)
			return
		}

		css := content
		if in.synth != nil {
			if o := in.synth.Synthesize(href, content); o.Applied {
				css += o.CSS
			}
		}
		if closesStyle(css) {
			in.log.Warn("Stylesheet contains a closing style tag, left as a link", zap.String("href", href))
			res.Skipped = append(res.Skipped, href)
			return
		}
		s.ReplaceWithHtml(styleTag(href, css))
		res.Inlined = append(res.Inlined, href)
	})

	out, err := doc.Html()
	if err != nil {
		return Result{}, fmt.Errorf("failed to render HTML: %w", err)
	}
	res.HTML = out
	return res, nil
}

// closesStyle reports whether css would end a <style> element early.
func closesStyle(css string) bool {
	return strings.Contains(strings.ToLower(css), "</style")
}

func styleTag(href, css string) string {
	var sb strings.Builder
	sb.WriteString(`<style data-href="`)
	sb.WriteString(html.EscapeString(href))
	sb.WriteString(`">`)
	sb.WriteString(css)
	sb.WriteString(`</style>`)
	return sb.String()
}
