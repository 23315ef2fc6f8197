package bot

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/dev-news-feed/internal/aggregator"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
)

type FeedRefresher interface {
	Refresh(ctx context.Context, force bool) (model.Snapshot, error)
}

// Агрегация может идти дольше обычного таймаута апдейта
const refreshTimeout = time.Minute

// /refresh всегда идет в источники, /shuffle уважает троттлинг
func ViewCmdRefresh(feed FeedRefresher, force bool) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		snapshot, err := feed.Refresh(ctx, force)
		if err != nil && !errors.Is(err, aggregator.ErrNoNews) {
			return err
		}

		if snapshot.Empty() {
			return reply(bot, update.Message.Chat.ID, markup.EscapeForMarkdown(noNewsText))
		}

		return reply(bot, update.Message.Chat.ID, formatCurrent(snapshot, time.Now()))
	}
}
