package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/dev-news-feed/internal/aggregator"
	"github.com/kovalyov-valentin/dev-news-feed/internal/config"
	"github.com/kovalyov-valentin/dev-news-feed/internal/logging"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/kovalyov-valentin/dev-news-feed/internal/source"
	"github.com/kovalyov-valentin/dev-news-feed/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Общие зависимости команд
type deps struct {
	cfg    config.Config
	log    *logrus.Logger
	client *source.Client

	// nil, если database_dsn не задан
	db       *sqlx.DB
	registry *storage.SourcePostgresStorage

	agg *aggregator.Aggregator
}

func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	var cfg config.Config

	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = loaded
	} else {
		cfg = config.Get()
	}

	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	return cfg, nil
}

func setup(ctx context.Context, c *cli.Context) (*deps, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	d := &deps{
		cfg:    cfg,
		log:    logging.New(cfg.LogLevel, cfg.LogFormat),
		client: source.NewClient(cfg.RequestTimeout, cfg.UserAgent),
	}

	entries, err := sourceEntries(cfg, d.client, d.log)
	if err != nil {
		return nil, err
	}

	strategy, err := aggregator.ParseStrategy(cfg.OrderStrategy)
	if err != nil {
		return nil, err
	}

	d.agg = aggregator.New(entries, aggregator.Options{
		MaxItems:       cfg.MaxItems,
		Strategy:       strategy,
		FilterKeywords: cfg.FilterKeywords,
		FeedCount:      cfg.RSSItemsPerFeed,
	}, d.log)

	if cfg.DatabaseDSN != "" {
		db, err := storage.Connect(ctx, cfg.DatabaseDSN, d.log)
		if err != nil {
			return nil, err
		}
		d.db = db

		d.registry = storage.NewSourcePostgresStorage(db)
		if err := d.registry.EnsureSchema(ctx); err != nil {
			d.Close()
			return nil, err
		}

		d.agg.WithFeedProvider(d.registry, func(m model.Source) aggregator.Source {
			return source.NewRSSSourceFromModel(m, d.client, d.log)
		})
	}

	return d, nil
}

// Включенные в конфиге адаптеры в порядке HN, Lobsters, DEV.to, RSS
func sourceEntries(cfg config.Config, client *source.Client, log logrus.FieldLogger) ([]aggregator.Entry, error) {
	var entries []aggregator.Entry

	if cfg.HackerNewsEnabled {
		entries = append(entries, aggregator.Entry{
			Source: source.NewHackerNews(client, "", log),
			Count:  cfg.HackerNewsCount,
		})
	}

	if cfg.LobstersEnabled {
		entries = append(entries, aggregator.Entry{
			Source: source.NewLobsters(client, "", log),
			Count:  cfg.LobstersCount,
		})
	}

	if cfg.DevToEnabled {
		entries = append(entries, aggregator.Entry{
			Source: source.NewDevTo(client, "", log),
			Count:  cfg.DevToCount,
		})
	}

	if cfg.RSSEnabled {
		feeds, err := config.LoadFeeds(cfg.FeedsFile)
		if err != nil {
			return nil, err
		}

		for _, feed := range feeds {
			entries = append(entries, aggregator.Entry{
				Source: source.NewRSSSourceFromModel(feed, client, log),
				Count:  cfg.RSSItemsPerFeed,
			})
		}
	}

	return entries, nil
}
