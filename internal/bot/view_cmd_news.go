package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
)

// Навигация по общей ленте, реализует store.Store
type FeedNavigator interface {
	Snapshot() model.Snapshot
	Next() model.Snapshot
	Previous() model.Snapshot
	Select(i int) model.Snapshot
}

func ViewCmdStart() botkit.ViewFunc {
	const help = "Лента новостей для разработчиков.\n\n" +
		"/news - текущая новость\n" +
		"/next, /prev - листать ленту\n" +
		"/select N - перейти к новости N\n" +
		"/list - вся лента\n" +
		"/summary - краткое содержание текущей новости\n" +
		"/shuffle - перемешать ленту (обновит ее, если она устарела)\n" +
		"/refresh - обновить ленту из источников"

	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		return reply(bot, update.Message.Chat.ID, markup.EscapeForMarkdown(help))
	}
}

func ViewCmdNews(feed FeedNavigator) botkit.ViewFunc {
	return viewSnapshot(feed.Snapshot)
}

func ViewCmdNext(feed FeedNavigator) botkit.ViewFunc {
	return viewSnapshot(feed.Next)
}

func ViewCmdPrev(feed FeedNavigator) botkit.ViewFunc {
	return viewSnapshot(feed.Previous)
}

// /select считает новости с единицы, как в /list
func ViewCmdSelect(feed FeedNavigator) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		index, err := botkit.ParsePosition(update.Message.CommandArguments())
		if err != nil {
			return reply(bot, update.Message.Chat.ID, markup.EscapeForMarkdown("Использование: /select N"))
		}

		before := feed.Snapshot()
		if index < 0 || index >= len(before.Items) {
			return reply(bot, update.Message.Chat.ID, markup.EscapeForMarkdown("Такой новости нет"))
		}

		return reply(bot, update.Message.Chat.ID, formatCurrent(feed.Select(index), time.Now()))
	}
}

func ViewCmdList(feed FeedNavigator) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		return reply(bot, update.Message.Chat.ID, formatList(feed.Snapshot()))
	}
}

func viewSnapshot(get func() model.Snapshot) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		return reply(bot, update.Message.Chat.ID, formatCurrent(get(), time.Now()))
	}
}
