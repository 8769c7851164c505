package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/octobees/icp-finder/internal/bootstrap"
	"github.com/octobees/icp-finder/internal/config"
	"github.com/octobees/icp-finder/internal/database"
	"github.com/octobees/icp-finder/internal/dto"
	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/finder"
	"github.com/octobees/icp-finder/internal/logger"
	"github.com/octobees/icp-finder/internal/render"
	"github.com/octobees/icp-finder/internal/search"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "icpfinder",
		Usage: "Find LinkedIn companies and people matching an ideal customer profile",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.IntFlag{
				Name:  "show",
				Usage: "Number of links listed per category in summaries",
				Value: render.DefaultSummaryLimit,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a single prompt and print the results",
				ArgsUsage: "<prompt...>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the raw response as JSON",
					},
					&cli.StringFlag{
						Name:  "csv",
						Usage: "Also write the deduplicated results to this CSV file",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Interactive session; results accumulate across prompts",
				Action: chatCommand,
			},
		},
	}
}

func buildFinder(c *cli.Context) (*finder.Finder, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	zl, err := logger.New(c.String("log-level"), "console")
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	cleanup := func() { _ = zl.Sync() }

	var cache search.Cache
	if cfg.RedisAddr != "" {
		rdb, err := database.NewRedis(c.Context, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			zl.Warn("search cache disabled", zap.Error(err))
		} else {
			cache = search.NewRedisCache(rdb)
			cleanup = func() {
				_ = rdb.Close()
				_ = zl.Sync()
			}
		}
	}

	pipeline, err := bootstrap.Build(c.Context, cfg, zl, cache)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return pipeline.Finder, cleanup, nil
}

func searchCommand(c *cli.Context) error {
	prompt := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if prompt == "" {
		return errors.New("a prompt is required")
	}

	f, cleanup, err := buildFinder(c)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := f.Run(c.Context, prompt)
	if err != nil {
		return err
	}

	out := c.App.Writer
	if c.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dto.NewSearchResponse(res)); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, render.Summary(res, c.Int("show")))
	}

	if path := c.String("csv"); path != "" {
		results := finder.Dedupe(res.All())
		if err := exportCSV(path, results); err != nil {
			return err
		}
		fmt.Fprintf(c.App.ErrWriter, "Exported %d results to %s\n", len(results), path)
	}
	return nil
}

func chatCommand(c *cli.Context) error {
	f, cleanup, err := buildFinder(c)
	if err != nil {
		return err
	}
	defer cleanup()

	return runChat(c.Context, f, c.App.Reader, c.App.Writer, c.Int("show"))
}

func exportCSV(path string, results []entity.SearchResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render.WriteCSV(file, results); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
