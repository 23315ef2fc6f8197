package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/dev-news-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
)

const (
	listTitleLimit = 75
	noNewsText     = "Новостей пока нет, попробуйте /refresh"
)

// Карточка текущей новости в MarkdownV2
func formatCurrent(snapshot model.Snapshot, now time.Time) string {
	item, ok := snapshot.Current()
	if !ok {
		return markup.EscapeForMarkdown(noNewsText)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "*%s*\n", markup.EscapeForMarkdown(item.Title))
	b.WriteString(markup.EscapeForMarkdown(formatMeta(item, now)))

	if item.Excerpt != "" {
		b.WriteString("\n\n")
		b.WriteString(markup.EscapeForMarkdown(item.Excerpt))
	}

	if item.HasLink() {
		b.WriteString("\n\n")
		b.WriteString(markup.EscapeForMarkdown(item.URL))
	}

	fmt.Fprintf(&b, "\n\n_%s_", markup.EscapeForMarkdown(fmt.Sprintf("%d/%d", snapshot.Index+1, len(snapshot.Items))))

	return b.String()
}

// Источник, автор, метрики и возраст новости в одну строку
func formatMeta(item model.Item, now time.Time) string {
	parts := []string{item.Source}

	if item.By != "" {
		parts = append(parts, "by "+item.By)
	}
	if item.Score != nil {
		parts = append(parts, fmt.Sprintf("%d points", *item.Score))
	}
	if item.Descendants != nil {
		parts = append(parts, fmt.Sprintf("%d comments", *item.Descendants))
	}

	parts = append(parts, timeAgo(item.Time, now))

	return strings.Join(parts, " · ")
}

// Нумерованный список, текущая новость помечена стрелкой
func formatList(snapshot model.Snapshot) string {
	if snapshot.Empty() {
		return markup.EscapeForMarkdown(noNewsText)
	}

	lines := make([]string, 0, len(snapshot.Items))
	for i, item := range snapshot.Items {
		marker := "  "
		if i == snapshot.Index {
			marker = "▶ "
		}

		line := fmt.Sprintf("%s%d. %s (%s)", marker, i+1, markup.Truncate(item.Title, listTitleLimit), item.Source)
		lines = append(lines, markup.EscapeForMarkdown(line))
	}

	return strings.Join(lines, "\n")
}

func timeAgo(t time.Time, now time.Time) string {
	seconds := int(now.Sub(t).Seconds())
	if seconds < 0 {
		seconds = 0
	}

	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds ago", seconds)
	case seconds < 60*60:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 24*60*60:
		return fmt.Sprintf("%dh ago", seconds/(60*60))
	default:
		return fmt.Sprintf("%dd ago", seconds/(24*60*60))
	}
}

func reply(bot *tgbotapi.BotAPI, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	_, err := bot.Send(msg)
	return err
}
