package inline

import (
	"bytes"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/dtnitsch/fontfallback/internal/common"
	"github.com/dtnitsch/fontfallback/pkg/inliner"
	"github.com/dtnitsch/fontfallback/pkg/manifest"
	"github.com/dtnitsch/fontfallback/pkg/override"
)

// InlineAction rewrites an HTML page so provider stylesheets are inlined
// from the manifest together with their fallback rules.
func InlineAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	m, err := manifest.Load(env.Storage, c.String("manifest"))
	if err != nil {
		return err
	}
	page, err := env.Storage.ReadFile(c.String("in"))
	if err != nil {
		return err
	}

	var synth *override.Synthesizer
	if !c.Bool("no-overrides") {
		synth = env.Synthesizer()
	}
	res, err := inliner.New(env.Config.Provider(), m, synth, env.Log).Inline(bytes.NewReader(page))
	if err != nil {
		return err
	}
	for _, href := range res.Skipped {
		env.Log.Warn("Stylesheet missing from manifest, left as link", zap.String("href", href))
	}
	env.Log.Info("Inlined font stylesheets", zap.Int("inlined", len(res.Inlined)), zap.Int("skipped", len(res.Skipped)))

	if out := c.String("out"); out != "" {
		return env.Storage.SaveFile(out, []byte(res.HTML))
	}
	_, err = fmt.Fprint(c.App.Writer, res.HTML)
	return err
}
