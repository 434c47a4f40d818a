// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/poiesic/lmtune"
	"github.com/poiesic/lmtune/core"
	"github.com/poiesic/lmtune/search"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lmtune",
		Usage: "Randomized hyperparameter search for language-model training",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Sample a group of configurations and write them to disk",
				Action: searchCommand,
				Flags: append(inputFlags(),
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Random seed for the batch",
						Value: 100,
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Print progress to stderr",
					},
				),
			},
			{
				Name:   "sweep",
				Usage:  "Run one search per seed and write each group to <output>/seed_<seed>",
				Action: sweepCommand,
				Flags: append(inputFlags(),
					&cli.Int64SliceFlag{
						Name:     "seeds",
						Usage:    "Seeds to sweep (repeat or comma-separate)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent searches",
						Value: 4,
					},
				),
			},
			{
				Name:   "runs",
				Usage:  "List archived runs, most recent first",
				Action: runsCommand,
				Flags: []cli.Flag{
					archiveFlag(true),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to list (0 for all)",
						Value: 20,
					},
				},
			},
			{
				Name:   "export",
				Usage:  "Write the group of an archived run to a directory",
				Action: exportCommand,
				Flags: []cli.Flag{
					archiveFlag(true),
					&cli.StringFlag{
						Name:     "run",
						Usage:    "Run ID as printed by the runs command",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Output directory",
						Required: true,
					},
				},
			},
		},
	}
}

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "base",
			Aliases:  []string{"b"},
			Usage:    "Path to the base configuration (JSON)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "search",
			Aliases:  []string{"s"},
			Usage:    "Path to the search config (JSON or HCL)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    "Output directory",
			Required: true,
		},
		&cli.IntFlag{
			Name:    "num-groups",
			Aliases: []string{"n"},
			Usage:   "Number of configurations to sample",
			Value:   1,
		},
		archiveFlag(false),
	}
}

func archiveFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "archive",
		Aliases:  []string{"a"},
		Usage:    "Path to the BadgerDB run archive directory",
		Required: required,
	}
}

func openWorkspace(c *cli.Context, opts ...lmtune.WorkspaceOption) (*lmtune.Workspace, error) {
	if path := c.String("archive"); path != "" {
		opts = append(opts, lmtune.WithArchive(path))
	}
	ws, err := lmtune.NewWorkspace(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	return ws, nil
}

func searchRequest(c *cli.Context) lmtune.SearchRequest {
	return lmtune.SearchRequest{
		BaseConfigPath:   c.String("base"),
		SearchConfigPath: c.String("search"),
		OutputDir:        c.String("output"),
		NumGroups:        c.Int("num-groups"),
		Seed:             c.Int64("seed"),
	}
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.Int("num-groups") < 0 {
		return fmt.Errorf("num-groups must not be negative")
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	req := searchRequest(c)
	if c.Bool("progress") {
		req.Monitor = search.NewProgressMonitor(os.Stderr, 1)
	}

	result, err := ws.Search(ctx, req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "run %s: wrote %d configurations to %s\n", result.RunID, len(result.Group), result.OutputDir)
	return nil
}

func sweepCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.Int("num-groups") < 0 {
		return fmt.Errorf("num-groups must not be negative")
	}
	if c.Int("pool-size") <= 0 {
		return fmt.Errorf("pool-size must be greater than 0")
	}

	ws, err := openWorkspace(c, lmtune.WithPoolSize(c.Int("pool-size")))
	if err != nil {
		return err
	}
	defer ws.Close()

	results, err := ws.Sweep(ctx, searchRequest(c), c.Int64Slice("seeds"))
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	for _, result := range results {
		fmt.Fprintf(c.App.Writer, "run %s: seed %d, wrote %d configurations to %s\n",
			result.RunID, result.Seed, len(result.Group), result.OutputDir)
	}
	return nil
}

func runsCommand(c *cli.Context) error {
	ctx := context.Background()

	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	runs, err := ws.Runs(ctx, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tCREATED\tSEED\tGROUPS\tCONFIG\tOUTPUT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			run.Id, run.InsertedAt.Local().Format("2006-01-02 15:04:05"),
			run.Seed, run.NumGroups, run.ConfigId, run.OutputDir)
	}
	return w.Flush()
}

func exportCommand(c *cli.Context) error {
	ctx := context.Background()

	id, err := core.ParseID(c.String("run"))
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", c.String("run"), err)
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.Export(ctx, id, c.String("output")); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "exported run %s to %s\n", id, c.String("output"))
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
