// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is shared by commands that read or create the config file.
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config file populated with the defaults",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// bandsCommand handles band catalog and search operations
func bandsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "bands",
		Aliases: []string{"band", "b"},
		Usage:   "Manage and search the band catalog",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import bands from a CSV (name,country,genres,followers) or JSON file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Action: r.BandsImport,
			},
			{
				Name:  "add",
				Usage: "Add a single band",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Band name as it should be displayed",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "country",
						Usage: "Country of origin",
					},
					&cli.StringSliceFlag{
						Name:    "genre",
						Aliases: []string{"g"},
						Usage:   "Genre tag (repeatable)",
					},
					&cli.IntFlag{
						Name:  "followers",
						Usage: "Follower count",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the created band as JSON",
					},
				},
				Action: r.BandsAdd,
			},
			{
				Name:  "list",
				Usage: "List bands in name order",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "country",
						Usage: "Only bands from this country",
					},
					&cli.StringFlag{
						Name:  "genre",
						Usage: "Only bands tagged with this genre",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of bands to list (0 for all)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.BandsList,
			},
			{
				Name:  "delete",
				Usage: "Remove a band from search results",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.BandsDelete,
			},
			{
				Name:  "search",
				Usage: "Resolve a band name query",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "debug",
						Aliases: []string{"d"},
						Usage:   "Show the strategy, variants and every attempt",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the report as JSON",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: txt, csv, md or json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the export to this file (default: results_{query}.{ext} when --format is set)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results (overrides search.limit)",
					},
				},
				Action: r.BandsSearch,
			},
			{
				Name:  "resolve",
				Usage: "Resolve every query in a file, one per line",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Queries file; blank lines and lines starting with # are skipped",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Queries per second",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:    "debug",
						Aliases: []string{"d"},
						Usage:   "Record attempts in each report",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output every report as JSON",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write a CSV summary to this file",
					},
				},
				Action: r.BandsResolve,
			},
		},
	}
}

// serveCommand runs the HTTP search API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the band search API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive search.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive band search",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Action: r.TUI,
	}
}
