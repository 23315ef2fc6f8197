package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/dev-news-feed/internal/bot"
	"github.com/kovalyov-valentin/dev-news-feed/internal/bot/middleware"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/kovalyov-valentin/dev-news-feed/internal/rotation"
	"github.com/kovalyov-valentin/dev-news-feed/internal/server"
	"github.com/kovalyov-valentin/dev-news-feed/internal/store"
	"github.com/kovalyov-valentin/dev-news-feed/internal/summary"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	consoleTitleLimit = 75
	shutdownTimeout   = 10 * time.Second
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Keep the feed fresh and rotate through it",
		Description: `Refreshes the feed right away and then every fetch_interval,
		rotates the current story every rotation_interval and prints it.

		The Telegram bot starts when telegram_bot_token is set,
		the HTTP panel starts when http_addr is set.`,
		Action: func(c *cli.Context) error {
			//Graceful Shutdown
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := setup(ctx, c)
			if err != nil {
				return err
			}
			defer d.Close()

			return serve(ctx, d)
		},
	}
}

func serve(ctx context.Context, d *deps) error {
	feed := store.New(d.agg, store.Options{
		RefreshInterval: d.cfg.RefreshInterval,
		FetchInterval:   d.cfg.FetchInterval,
	}, d.log)

	rotator := rotation.NewRotator(feed, consoleDisplay(d.log), d.cfg.RotationInterval, d.log)

	var newsBot *botkit.Bot
	if d.cfg.TelegramBotToken != "" {
		botAPI, err := tgbotapi.NewBotAPI(d.cfg.TelegramBotToken)
		if err != nil {
			return err
		}

		newsBot = newBot(botAPI, feed, d)
	}

	var wg sync.WaitGroup
	run := func(name string, start func(context.Context) error) {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.log.WithError(err).Errorf("%s stopped with error", name)
				return
			}

			d.log.Infof("%s stopped", name)
		}()
	}

	// Воркер обновления ленты
	run("store", feed.Start)
	// Ротация текущей новости
	run("rotator", rotator.Start)

	if newsBot != nil {
		run("bot", newsBot.Run)
	}

	if d.cfg.HTTPAddr != "" {
		app := server.New(feed, d.log)

		run("http", func(ctx context.Context) error {
			go func() {
				<-ctx.Done()
				if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
					d.log.WithError(err).Error("http shutdown")
				}
			}()

			d.log.WithField("addr", d.cfg.HTTPAddr).Info("http panel listening")
			return app.Listen(d.cfg.HTTPAddr)
		})
	}

	wg.Wait()

	return nil
}

// Обернуть middleware все view, где нужно дать доступ только админу
func newBot(api *tgbotapi.BotAPI, feed *store.Store, d *deps) *botkit.Bot {
	summarizer := summary.NewArticleSummarizer(
		summary.NewOpenAISummarizer(d.cfg.OpenAIKey, d.cfg.OpenAIPrompt, d.log),
		d.cfg.RequestTimeout,
	)

	newsBot := botkit.New(api, d.log)
	newsBot.RegisterCmdView("start", bot.ViewCmdStart())
	newsBot.RegisterCmdView("help", bot.ViewCmdStart())
	newsBot.RegisterCmdView("news", bot.ViewCmdNews(feed))
	newsBot.RegisterCmdView("next", bot.ViewCmdNext(feed))
	newsBot.RegisterCmdView("prev", bot.ViewCmdPrev(feed))
	newsBot.RegisterCmdView("select", bot.ViewCmdSelect(feed))
	newsBot.RegisterCmdView("list", bot.ViewCmdList(feed))
	newsBot.RegisterCmdView("summary", bot.ViewCmdSummary(feed, summarizer))
	newsBot.RegisterCmdView("shuffle", bot.ViewCmdRefresh(feed, false))
	newsBot.RegisterCmdView(
		"refresh",
		middleware.AdminOnly(
			d.cfg.TelegramChannelID,
			bot.ViewCmdRefresh(feed, true),
		),
	)

	if d.registry != nil {
		newsBot.RegisterCmdView(
			"addsource",
			middleware.AdminOnly(
				d.cfg.TelegramChannelID,
				bot.ViewCmdAddSource(d.registry),
			),
		)
		newsBot.RegisterCmdView(
			"deletesource",
			middleware.AdminOnly(
				d.cfg.TelegramChannelID,
				bot.ViewCmdDeleteSource(d.registry),
			),
		)
		newsBot.RegisterCmdView("listsources", bot.ViewCmdListSources(d.registry))
	}

	return newsBot
}

// Текущая новость в лог, одной строкой
func consoleDisplay(log logrus.FieldLogger) rotation.Display {
	return rotation.DisplayFunc(func(snapshot model.Snapshot) {
		item, ok := snapshot.Current()
		if !ok {
			log.Info("no news available")
			return
		}

		log.WithFields(logrus.Fields{
			"position": snapshot.Index + 1,
			"total":    len(snapshot.Items),
			"source":   item.Source,
			"url":      item.URL,
		}).Info(markup.Truncate(item.Title, consoleTitleLimit))
	})
}
