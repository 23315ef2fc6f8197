package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("devnews failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "devnews",
		Usage: "Rotating feed of developer news",
		Description: `Collects stories from Hacker News, Lobsters, DEV.to and RSS feeds,
		merges them into one feed and rotates through it.

		Settings are read from config.hcl and config.local.hcl in the working
		directory, environment variables with the DNF_ prefix override them, e.g.:

		max_items => DNF_MAX_ITEMS=20
		telegram_bot_token => DNF_TELEGRAM_BOT_TOKEN=...
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file location, replaces config.hcl and config.local.hcl",
				EnvVars: []string{"DNF_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Overrides log_level from config",
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			fetchCmd(),
			sourcesCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Без команды показываем help
			return cli.ShowAppHelp(ctx)
		},
	}
}
