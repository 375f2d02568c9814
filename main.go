package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	dbcmd "github.com/dtnitsch/fontfallback/internal/db"
	"github.com/dtnitsch/fontfallback/internal/fetch"
	"github.com/dtnitsch/fontfallback/internal/inline"
	manifestcmd "github.com/dtnitsch/fontfallback/internal/manifest"
	"github.com/dtnitsch/fontfallback/models"
	"github.com/dtnitsch/fontfallback/pkg/manifest"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

// embeddedFamilies names the families in the embedded metrics table.
const embeddedFamilies = "Inter, Lato, Lora, Merriweather, Montserrat, Noto Sans, Open Sans, " +
	"Playfair Display, Roboto, Roboto Slab and Source Code Pro"

// metricsNote explains the all-or-nothing metrics requirement of the
// override commands.
const metricsNote = "Fallback rules need a metrics record for every font family in a stylesheet; " +
	"one unknown family skips the whole stylesheet. The embedded table only covers " + embeddedFamilies +
	". Pass --metrics with a full table (for example the Google Fonts metrics JSON) for other families."

func urlFlag(required bool) *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:     "url",
		Aliases:  []string{"u"},
		Usage:    "stylesheet URL (repeatable)",
		Required: required,
	}
}

func manifestFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "manifest",
		Aliases:  []string{"m"},
		Usage:    "read stylesheets from this font manifest instead of the network",
		Required: required,
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "fontfallback",
		Usage: "fetch font stylesheets and generate metric-override fallback @font-face rules",
		// main reports errors and picks the exit code
		ExitErrHandler: func(*cli.Context, error) {},
		// provider URLs carry commas between font weights
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: models.DefaultConfigFile, Usage: "YAML config file"},
			&cli.StringFlag{Name: "metrics", Usage: "JSON font metrics table (default: embedded table of " + embeddedFamilies + ")"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "console or json"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
			&cli.StringFlag{Name: "cache-dir", Usage: "cache downloaded stylesheets in this directory"},
			&cli.StringFlag{Name: "cache-max-age", Usage: "how long cached stylesheets stay fresh, e.g. 24h"},
			&cli.StringFlag{Name: "database", Usage: "SQLite stylesheet database"},
		},
		Commands: []*cli.Command{
			{
				Name:   "fetch",
				Usage:  "print the stylesheet text served for each URL",
				Flags:  []cli.Flag{urlFlag(true)},
				Action: fetch.FetchAction,
			},
			{
				Name:        "override",
				Usage:       "print fallback @font-face rules for each URL",
				Description: metricsNote,
				Flags:       []cli.Flag{urlFlag(true), manifestFlag(false)},
				Action:      fetch.OverrideAction,
			},
			{
				Name:        "inspect",
				Usage:       "print a YAML report of faces, formats and overrides for each URL",
				Description: metricsNote,
				Flags:       []cli.Flag{urlFlag(true), manifestFlag(false)},
				Action:      fetch.InspectAction,
			},
			{
				Name:  "manifest",
				Usage: "build and export font manifests",
				Subcommands: []*cli.Command{
					{
						Name:  "build",
						Usage: "download stylesheets, store them and write a manifest",
						Flags: []cli.Flag{
							urlFlag(true),
							&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: manifest.DefaultFileName, Usage: "manifest output file"},
							&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "concurrent downloads"},
						},
						Action: manifestcmd.BuildAction,
					},
					{
						Name:  "export",
						Usage: "write a manifest of every stored stylesheet",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: manifest.DefaultFileName, Usage: "manifest output file"},
						},
						Action: manifestcmd.ExportAction,
					},
				},
			},
			{
				Name:        "inline",
				Usage:       "inline provider stylesheets and fallback rules into an HTML page",
				Description: metricsNote,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Required: true, Usage: "HTML input file"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "HTML output file (default: stdout)"},
					manifestFlag(true),
					&cli.BoolFlag{Name: "no-overrides", Usage: "inline stylesheets without fallback rules"},
				},
				Action: inline.InlineAction,
			},
			{
				Name:  "db",
				Usage: "inspect the stylesheet database",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "list stored stylesheets",
						Flags:  []cli.Flag{&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 50, Usage: "maximum rows (0 for all)"}},
						Action: dbcmd.ListAction,
					},
					{
						Name:  "show",
						Usage: "print a stored stylesheet",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Required: true, Usage: "stylesheet URL"},
						},
						Action: dbcmd.ShowAction,
					},
					{
						Name:  "delete",
						Usage: "forget a stored stylesheet",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Required: true, Usage: "stylesheet URL"},
						},
						Action: dbcmd.DeleteAction,
					},
				},
			},
		},
	}
}
