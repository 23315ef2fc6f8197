package aggregator

import (
	"net/url"
	"strings"

	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/samber/lo"
)

// Одна и та же статья часто приходит из нескольких источников.
// Сравниваем по нормализованной ссылке, потом по заголовку, первая встреченная остается
func dedupe(items []model.Item) []model.Item {
	items = lo.UniqBy(items, func(item model.Item) string {
		if key := urlKey(item.URL); key != "" {
			return key
		}
		return "title:" + titleKey(item.Title)
	})

	return lo.UniqBy(items, func(item model.Item) string {
		return titleKey(item.Title)
	})
}

// http/https, www и завершающий слэш на сравнение не влияют
func urlKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	key := host + strings.TrimSuffix(u.EscapedPath(), "/")
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}

	return key
}

func titleKey(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
