package botkit

import (
	"context"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const updateTimeout = 15 * time.Second

type Bot struct {
	// Инстанс апи телеграма
	api *tgbotapi.BotAPI
	// Мапа команда -> view
	cmdViews map[string]ViewFunc
	log      logrus.FieldLogger
}

// Функция, которая реагирует на определенную команду.
// Update это любое событие от телеграма, api это клиент, через который отвечаем
type ViewFunc func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error

func New(api *tgbotapi.BotAPI, log logrus.FieldLogger) *Bot {
	return &Bot{
		api:      api,
		cmdViews: make(map[string]ViewFunc),
		log:      log,
	}
}

// Метод для регистрации View для команды
func (b *Bot) RegisterCmdView(cmd string, view ViewFunc) {
	b.cmdViews[cmd] = view
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			updateCtx, updateCancel := context.WithTimeout(ctx, updateTimeout)
			b.handleUpdate(updateCtx, update)
			updateCancel()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Роутит команду на view
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Паника во view не должна ронять бота
	defer func() {
		if p := recover(); p != nil {
			b.log.WithField("panic", p).WithField("stack", string(debug.Stack())).Error("panic recovered")
		}
	}()

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	cmd := update.Message.Command()

	view, ok := b.cmdViews[cmd]
	if !ok {
		return
	}

	if err := view(ctx, b.api, update); err != nil {
		b.log.WithError(err).WithField("command", cmd).Error("failed to handle update")

		if _, err := b.api.Send(
			tgbotapi.NewMessage(update.Message.Chat.ID, "internal error"),
		); err != nil {
			b.log.WithError(err).Error("failed to send message")
		}
	}
}
