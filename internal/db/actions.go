package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/dtnitsch/fontfallback/internal/common"
	"github.com/dtnitsch/fontfallback/pkg/caching"
	dbpkg "github.com/dtnitsch/fontfallback/pkg/db"
)

// ListAction prints the stored stylesheets.
func ListAction(c *cli.Context) (err error) {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	database, err := dbpkg.Open(env.Config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, database.Close())
	}()

	rows, err := database.ListStylesheets(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(c.App.Writer, "No stylesheets stored")
		return nil
	}

	w := c.App.Writer
	fmt.Fprintf(w, "%-20s %-9s %-8s %-6s %-7s %-16s %s\n",
		"Fetched", "Provider", "Bytes", "Faces", "Failed", "Formats", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, r := range rows {
		fmt.Fprintf(w, "%-20s %-9t %-8d %-6d %-7d %-16s %s\n",
			r.FetchedAt.Format("2006-01-02 15:04:05"),
			r.Provider,
			r.SizeBytes,
			r.FaceCount,
			r.FailedAttempts,
			strings.Join(r.Formats, ","),
			r.URL,
		)
	}
	fmt.Fprintf(w, "\nTotal: %d stylesheets\n", len(rows))
	return nil
}

// DeleteAction forgets a stored stylesheet and drops its cache entry.
func DeleteAction(c *cli.Context) (err error) {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	url := c.String("url")
	database, err := dbpkg.Open(env.Config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, database.Close())
	}()

	deleted, err := database.DeleteStylesheet(url)
	if err != nil {
		return err
	}

	if env.Config.CacheDir != "" {
		maxAge, err := env.Config.MaxAge()
		if err != nil {
			return err
		}
		cache, err := caching.NewCache(env.Config.CacheDir, maxAge)
		if err != nil {
			return err
		}
		if err := cache.Delete(url); err != nil {
			return err
		}
	}

	if !deleted {
		return cli.Exit(fmt.Sprintf("No stylesheet stored for %s", url), 1)
	}
	fmt.Fprintf(c.App.Writer, "Deleted %s\n", url)
	return nil
}

// ShowAction prints the stored text of one stylesheet.
func ShowAction(c *cli.Context) (err error) {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	url := c.String("url")
	database, err := dbpkg.Open(env.Config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, database.Close())
	}()

	s, err := database.GetStylesheet(url)
	if errors.Is(err, dbpkg.ErrNotFound) {
		return cli.Exit(fmt.Sprintf("No stylesheet stored for %s", url), 1)
	}
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, s.Content)
	return nil
}
