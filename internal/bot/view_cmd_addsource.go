package bot

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
)

type SourceStorage interface {
	Add(ctx context.Context, source model.Source) (int64, error)
}

// /addsource {"name": "Go blog", "url": "https://go.dev/blog/feed.atom"}
func ViewCmdAddSource(storage SourceStorage) botkit.ViewFunc {
	type addSourceArgs struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}

	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		args, err := botkit.ParseJSON[addSourceArgs](update.Message.CommandArguments())
		if err != nil || strings.TrimSpace(args.Name) == "" || !validFeedURL(args.URL) {
			return reply(bot, update.Message.Chat.ID, markup.EscapeForMarkdown(`Использование: /addsource {"name": "...", "url": "https://..."}`))
		}

		sourceID, err := storage.Add(ctx, model.Source{
			Name:    strings.TrimSpace(args.Name),
			FeedURL: strings.TrimSpace(args.URL),
		})
		if err != nil {
			return err
		}

		msgText := fmt.Sprintf(
			"Источник добавлен с ID: `%d`\\. Он попадет в ленту при следующем обновлении\\.",
			sourceID,
		)

		return reply(bot, update.Message.Chat.ID, msgText)
	}
}

func validFeedURL(raw string) bool {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
