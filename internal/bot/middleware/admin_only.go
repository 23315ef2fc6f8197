package middleware

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit"
)

// AdminOnly пропускает к view только администраторов канала channelID.
// Без настроенного канала команды недоступны никому
func AdminOnly(channelID int64, next botkit.ViewFunc) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		if update.Message == nil || update.Message.From == nil {
			return nil
		}

		if channelID != 0 {
			admins, err := bot.GetChatAdministrators(
				tgbotapi.ChatAdministratorsConfig{
					ChatConfig: tgbotapi.ChatConfig{
						ChatID: channelID,
					},
				},
			)
			if err != nil {
				return fmt.Errorf("get chat administrators: %w", err)
			}

			for _, admin := range admins {
				if admin.User != nil && admin.User.ID == update.Message.From.ID {
					return next(ctx, bot, update)
				}
			}
		}

		if _, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "У вас нет прав для выполнения этой команды")); err != nil {
			return err
		}

		return nil
	}
}
