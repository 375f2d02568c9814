package fetch

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/fontfallback/internal/common"
	"github.com/dtnitsch/fontfallback/pkg/fetcher"
	"github.com/dtnitsch/fontfallback/pkg/manifest"
	"github.com/dtnitsch/fontfallback/pkg/metrics"
	"github.com/dtnitsch/fontfallback/pkg/override"
	"github.com/dtnitsch/fontfallback/pkg/parser"
	"github.com/dtnitsch/fontfallback/pkg/stylesheet"
)

// urlsFromFlags sanitizes --url values and fails on anything malformed.
func urlsFromFlags(c *cli.Context) ([]string, error) {
	urls := common.NonEmpty(c.StringSlice("url"))
	if len(urls) == 0 {
		return nil, cli.Exit("Error: No URLs provided (use --url)", 1)
	}
	valid, invalid := common.SanitizeAndValidateURLs(urls)
	if len(invalid) > 0 {
		return nil, cli.Exit(fmt.Sprintf("Error: %d URL(s) are malformed: %q", len(invalid), invalid), 1)
	}
	return valid, nil
}

// FetchAction prints the stylesheet text of every --url, legacy variants
// first for provider URLs.
func FetchAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	urls, err := urlsFromFlags(c)
	if err != nil {
		return err
	}
	src, err := env.Fetcher()
	if err != nil {
		return err
	}

	failed := 0
	for _, u := range urls {
		sheet := src.Fetch(c.Context, u)
		if !sheet.OK {
			failed++
			continue
		}
		env.Log.Info("Fetched stylesheet", zap.String("url", u), zap.Int("bytes", len(sheet.Text)))
		fmt.Fprint(c.App.Writer, sheet.Text)
	}
	if failed == len(urls) {
		return cli.Exit("Error: no stylesheet could be downloaded", 2)
	}
	return nil
}

// loadCSS returns the stylesheet for url from the manifest when one is
// given, otherwise from the network.
func loadCSS(ctx context.Context, src fetcher.Source, m manifest.Manifest, useManifest bool, url string) (string, bool, string) {
	if useManifest {
		css := m.Lookup(url)
		return css, css != "", SourceManifest
	}
	sheet := src.Fetch(ctx, url)
	return sheet.Text, sheet.OK, SourceNetwork
}

func loadManifest(c *cli.Context, env *common.Env) (manifest.Manifest, bool, error) {
	if !c.IsSet("manifest") {
		return nil, false, nil
	}
	m, err := manifest.Load(env.Storage, c.String("manifest"))
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

// OverrideAction prints the fallback @font-face rules for every --url.
func OverrideAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	urls, err := urlsFromFlags(c)
	if err != nil {
		return err
	}
	m, useManifest, err := loadManifest(c, env)
	if err != nil {
		return err
	}
	src, err := env.Fetcher()
	if err != nil {
		return err
	}
	synth := env.Synthesizer()

	for _, u := range urls {
		css, ok, from := loadCSS(c.Context, src, m, useManifest, u)
		if !ok {
			env.Log.Info("No stylesheet available, skipped optimizing this font", zap.String("url", u), zap.String("source", from))
			continue
		}
		res := synth.Synthesize(u, css)
		if !res.Applied {
			env.Log.Info("Override CSS skipped", zap.String("url", u))
			continue
		}
		fmt.Fprint(c.App.Writer, res.String())
	}
	return nil
}

// InspectAction prints a YAML report describing the faces, formats and
// overrides of one stylesheet.
func InspectAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	urls, err := urlsFromFlags(c)
	if err != nil {
		return err
	}
	m, useManifest, err := loadManifest(c, env)
	if err != nil {
		return err
	}
	src, err := env.Fetcher()
	if err != nil {
		return err
	}

	calc := metrics.NewCalculator(env.Table, env.Config.Fallbacks)
	synth := env.Synthesizer()
	enc := yaml.NewEncoder(c.App.Writer)
	enc.SetIndent(2)
	defer enc.Close()

	for _, u := range urls {
		css, ok, from := loadCSS(c.Context, src, m, useManifest, u)
		report := BuildReport(u, css, ok, from, env.Config.Provider().Recognizes(u), calc, synth)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	}
	return nil
}

// BuildReport describes css as downloaded from url.
func BuildReport(url, css string, available bool, source string, provider bool, calc *metrics.Calculator, synth *override.Synthesizer) InspectReport {
	report := InspectReport{
		URL:       url,
		Provider:  provider,
		Source:    source,
		Available: available,
		SizeBytes: len(css),
	}
	if !available {
		return report
	}

	faces, err := stylesheet.Inventory([]byte(css))
	if err != nil {
		report.ParseError = err.Error()
	}
	report.Faces = faces
	report.Formats = stylesheet.Formats(faces)

	for _, family := range parser.ExtractFontNames(css) {
		fr := FamilyReport{Family: family, Fallback: override.CSSSafeName(family) + "-fallback"}
		o, err := calc.Compute(family)
		if err != nil {
			fr.Error = err.Error()
		} else {
			fr.Override = &o
		}
		report.Families = append(report.Families, fr)
	}
	report.OverrideApplied = synth.Synthesize(url, css).Applied
	return report
}
