package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/kovalyov-valentin/dev-news-feed/internal/summary"
)

type CurrentProvider interface {
	CurrentItem() (model.Item, bool)
}

type ItemSummarizer interface {
	Summarize(ctx context.Context, item model.Item) (string, error)
}

func ViewCmdSummary(feed CurrentProvider, summarizer ItemSummarizer) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		item, ok := feed.CurrentItem()
		if !ok {
			return reply(bot, update.Message.Chat.ID, markup.EscapeForMarkdown(noNewsText))
		}

		text, err := summarizer.Summarize(ctx, item)
		if errors.Is(err, summary.ErrNoText) || (err == nil && text == "") {
			return reply(bot, update.Message.Chat.ID, markup.EscapeForMarkdown("Для этой новости нет краткого содержания"))
		}
		if err != nil {
			return fmt.Errorf("summarize %q: %w", item.URL, err)
		}

		// Шаблон: жирный заголовок, потом summary
		const msgFormat = "*%s*\n\n%s"

		return reply(bot, update.Message.Chat.ID, fmt.Sprintf(
			msgFormat,
			markup.EscapeForMarkdown(item.Title),
			markup.EscapeForMarkdown(text),
		))
	}
}
