// Package override synthesizes fallback @font-face rules whose metric
// overrides approximate the provider's web fonts.
package override

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dtnitsch/fontfallback/pkg/metrics"
	"github.com/dtnitsch/fontfallback/pkg/parser"
	"github.com/dtnitsch/fontfallback/pkg/provider"
)

// Result is the outcome of a synthesis. Applied is false when the
// optimization was skipped; an applied result may still carry empty CSS when
// the stylesheet declared no families.
type Result struct {
	Applied bool
	CSS     string
}

// Skipped is the result for URLs that get no override CSS.
func Skipped() Result {
	return Result{}
}

// String returns the CSS, empty when skipped.
func (r Result) String() string {
	return r.CSS
}

// Synthesizer builds override CSS for stylesheets of one provider.
type Synthesizer struct {
	provider provider.Provider
	calc     *metrics.Calculator
	log      *zap.Logger
}

func NewSynthesizer(p provider.Provider, calc *metrics.Calculator, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{provider: p, calc: calc, log: log.Named("override")}
}

// Synthesize returns one fallback block per family declared in css. Any
// family missing from the metrics table skips the whole URL.
func (s *Synthesizer) Synthesize(url, css string) Result {
	if !s.provider.Recognizes(url) {
		return Skipped()
	}

	var sb strings.Builder
	for _, family := range parser.ExtractFontNames(css) {
		block, err := s.Block(family)
		if err != nil {
			s.log.Error("Error getting font override values", zap.String("url", url), zap.Error(err))
			return Skipped()
		}
		sb.WriteString(block)
	}
	return Result{Applied: true, CSS: sb.String()}
}

// Block renders the fallback @font-face rule for one family.
func (s *Synthesizer) Block(family string) (string, error) {
	o, err := s.calc.Compute(family)
	if err != nil {
		return "", fmt.Errorf("failed to compute override for %q: %w", family, err)
	}
	return fmt.Sprintf(`
    @font-face {
      font-family: "%s-fallback";
      ascent-override: %s%%;
      descent-override: %s%%;
      line-gap-override: %s%%;
      src: local("%s");
    }
  `, CSSSafeName(family), o.Ascent, o.Descent, o.LineGap, o.FallbackFont), nil
}

// CSSSafeName lowercases and trims family and turns spaces into hyphens.
func CSSSafeName(family string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(family)), " ", "-")
}
