package manifest

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dtnitsch/fontfallback/internal/common"
	"github.com/dtnitsch/fontfallback/pkg/db"
	manifestpkg "github.com/dtnitsch/fontfallback/pkg/manifest"
	"github.com/dtnitsch/fontfallback/pkg/stylesheet"
)

// BuildAction downloads every --url ahead of time, stores the stylesheets
// in the database and writes the font manifest.
func BuildAction(c *cli.Context) (err error) {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	urls := common.NonEmpty(c.StringSlice("url"))
	if len(urls) == 0 {
		return cli.Exit("Error: No URLs provided (use --url)", 1)
	}
	valid, invalid := common.SanitizeAndValidateURLs(urls)
	if len(invalid) > 0 {
		return cli.Exit(fmt.Sprintf("Error: %d URL(s) are malformed: %q", len(invalid), invalid), 1)
	}

	database, err := db.Open(env.Config.Database)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, database.Close())
	}()

	src, err := env.Fetcher()
	if err != nil {
		return err
	}
	m, fetchErr := manifestpkg.NewBuilder(src, env.Config.Workers, env.Log).Build(c.Context, valid)
	for _, e := range multierr.Errors(fetchErr) {
		env.Log.Warn("Stylesheet left out of manifest", zap.Error(e))
	}

	if err := Store(database, env, valid, m); err != nil {
		return err
	}

	out := c.String("out")
	if err := manifestpkg.Save(env.Storage, out, m); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Font manifest: %d/%d stylesheets saved to %s\n", len(m), len(valid), out)
	if len(m) == 0 {
		return cli.Exit("Error: no stylesheet could be downloaded", 2)
	}
	return nil
}

// Store records one attempt per URL and saves every manifest entry with its
// face inventory.
func Store(database *db.DB, env *common.Env, urls []string, m manifestpkg.Manifest) error {
	prov := env.Config.Provider()
	fetched := make(map[string]bool, len(m))
	var err error

	for _, e := range m {
		fetched[e.URL] = true
		faces, perr := stylesheet.Inventory([]byte(e.Content))
		if perr != nil {
			env.Log.Debug("Stylesheet did not parse cleanly", zap.String("url", e.URL), zap.Error(perr))
		}
		_, serr := database.SaveStylesheet(db.Stylesheet{
			URL:       e.URL,
			Content:   e.Content,
			Provider:  prov.Recognizes(e.URL),
			FaceCount: len(faces),
			Formats:   stylesheet.Formats(faces),
		})
		err = multierr.Append(err, serr)
	}
	for _, u := range urls {
		err = multierr.Append(err, database.RecordAttempt(u, fetched[u]))
	}
	return err
}

// ExportAction writes the manifest of every stored stylesheet.
func ExportAction(c *cli.Context) (err error) {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	database, err := db.Open(env.Config.Database)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, database.Close())
	}()

	m, err := database.Manifest()
	if err != nil {
		return err
	}
	out := c.String("out")
	if err := manifestpkg.Save(env.Storage, out, m); err != nil {
		return err
	}
	if stats, err := env.Storage.GetFileStats(out); err == nil {
		env.Log.Debug("Manifest written", zap.String("file", out), zap.Int64("bytes", stats.SizeBytes))
	}
	fmt.Fprintf(c.App.Writer, "Font manifest: %d stylesheets exported to %s\n", len(m), out)
	return nil
}
