package source

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ExcerptLimit ограничивает длину выжимки в символах (рунах).
const ExcerptLimit = 200

// StripHTML убирает разметку и схлопывает пробелы.
// Если html не разбирается, возвращаем исходный текст как есть.
func StripHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return collapseSpaces(html)
	}

	return collapseSpaces(doc.Text())
}

// Excerpt делает короткий текст из html контента или описания.
func Excerpt(html string) string {
	return truncate(StripHTML(html), ExcerptLimit)
}

// FirstImage ищет первый <img src=...> в сыром html.
func FirstImage(html string) string {
	if !strings.Contains(strings.ToLower(html), "<img") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return strings.TrimSpace(string(runes[:limit])) + "..."
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Источники отдают даты в разных вариантах ISO-8601.
// Нулевое время означает, что дата не распознана, дальше ее заменит время получения
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}

	return time.Time{}
}
