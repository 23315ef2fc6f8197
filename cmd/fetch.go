package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kovalyov-valentin/dev-news-feed/internal/aggregator"
	"github.com/kovalyov-valentin/dev-news-feed/internal/logging"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/kovalyov-valentin/dev-news-feed/internal/source"
	"github.com/kovalyov-valentin/dev-news-feed/internal/store"
	"github.com/urfave/cli/v2"
)

const fetchTimeout = 2 * time.Minute

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch the feed once and print it",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print items as JSON lines",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithTimeout(c.Context, fetchTimeout)
			defer cancel()

			d, err := setup(ctx, c)
			if err != nil {
				return err
			}
			defer d.Close()

			feed := store.New(d.agg, store.Options{}, d.log)

			snapshot, err := feed.Refresh(ctx, true)
			if errors.Is(err, aggregator.ErrNoNews) {
				fmt.Fprintln(c.App.Writer, "no news available")
				return nil
			}
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return printJSON(c.App.Writer, snapshot.Items)
			}

			printFeed(c.App.Writer, snapshot)
			return nil
		},
	}
}

func sourcesCmd() *cli.Command {
	return &cli.Command{
		Name:  "sources",
		Usage: "Print enabled sources",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			log := logging.New(cfg.LogLevel, cfg.LogFormat)
			entries, err := sourceEntries(cfg, source.NewClient(cfg.RequestTimeout, cfg.UserAgent), log)
			if err != nil {
				return err
			}

			for _, entry := range entries {
				line := fmt.Sprintf("%-20s %3d", entry.Source.Name(), entry.Count)
				if feed, ok := entry.Source.(*source.RSSSource); ok {
					line += "  " + feed.URL
				}
				fmt.Fprintln(c.App.Writer, line)
			}

			return nil
		},
	}
}

func printFeed(w io.Writer, snapshot model.Snapshot) {
	for i, item := range snapshot.Items {
		fmt.Fprintf(w, "%2d. [%s] %s\n    %s\n", i+1, item.Source, item.Title, item.URL)
	}
}

func printJSON(w io.Writer, items []model.Item) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}

	return nil
}
