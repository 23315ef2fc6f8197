package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/kovalyov-valentin/dev-news-feed/internal/storage"
)

type SourceDeleter interface {
	SourceByID(ctx context.Context, id int64) (*model.Source, error)
	Delete(ctx context.Context, id int64) error
}

// /deletesource 3
func ViewCmdDeleteSource(sources SourceDeleter) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		id, err := strconv.ParseInt(strings.TrimSpace(update.Message.CommandArguments()), 10, 64)
		if err != nil {
			return reply(bot, update.Message.Chat.ID, markup.EscapeForMarkdown("Использование: /deletesource ID"))
		}

		source, err := sources.SourceByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return reply(bot, update.Message.Chat.ID, markup.EscapeForMarkdown("Источник не найден"))
			}
			return err
		}

		if err := sources.Delete(ctx, id); err != nil {
			if isNotFound(err) {
				return reply(bot, update.Message.Chat.ID, markup.EscapeForMarkdown("Источник не найден"))
			}
			return err
		}

		return reply(bot, update.Message.Chat.ID, fmt.Sprintf(
			"Источник *%s* удален",
			markup.EscapeForMarkdown(source.Name),
		))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrSourceNotFound)
}
