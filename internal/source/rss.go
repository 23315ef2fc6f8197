package source

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const (
	defaultFeedCount = 10
	untitled         = "Untitled"
	feedAccept       = "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8"
)

// Клиент для RSS/Atom/JSON лент.
// Один экземпляр на один адрес фида, имя фида становится тегом источника у новостей
type RSSSource struct {
	// URL откуда мы забираем данные
	URL string
	// Его id в реестре, 0 если фид из конфига
	SourceID   int64
	SourceName string

	client *Client
	parser *gofeed.Parser
	log    logrus.FieldLogger
}

// Конструктор, который из модели источника создает клиент для ленты
func NewRSSSourceFromModel(m model.Source, client *Client, log logrus.FieldLogger) *RSSSource {
	return &RSSSource{
		URL:        m.FeedURL,
		SourceID:   m.ID,
		SourceName: m.Name,
		client:     client,
		parser:     gofeed.NewParser(),
		log:        log.WithField("source", m.Name),
	}
}

func (s *RSSSource) ID() int64 {
	return s.SourceID
}

func (s *RSSSource) Name() string {
	return s.SourceName
}

func (s *RSSSource) Fetch(ctx context.Context, count int) ([]model.Item, error) {
	if count <= 0 {
		count = defaultFeedCount
	}

	body, err := s.client.Get(ctx, s.URL, feedAccept)
	if err != nil {
		return nil, err
	}

	items, err := s.parse(body)
	if err != nil {
		return nil, err
	}

	if len(items) > count {
		items = items[:count]
	}

	return items, nil
}

// Сначала пробуем gofeed, он понимает RSS, Atom и JSON Feed и отдает media расширения.
// Если документ кривой, то пробуем тот же набор байт более терпимым парсером
func (s *RSSSource) parse(body []byte) ([]model.Item, error) {
	feed, err := s.parser.Parse(bytes.NewReader(body))
	if err == nil {
		return collect(s.log, feed.Items, s.fromGofeed), nil
	}

	lenient, lenientErr := rss.Parse(body)
	if lenientErr != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.URL, err)
	}

	s.log.WithError(err).Debug("feed parsed with lenient parser")

	return collect(s.log, lenient.Items, s.fromLenient), nil
}

// Битая запись выпадает, остальные записи ленты не страдают
func collect[T any](log logrus.FieldLogger, entries []*T, mapFn func(*T) model.Item) []model.Item {
	items := make([]model.Item, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}

		item, err := model.NewItem(mapFn(entry))
		if err != nil {
			log.WithError(err).Debug("dropping feed entry")
			continue
		}

		items = append(items, item)
	}

	return items
}

func (s *RSSSource) fromGofeed(entry *gofeed.Item) model.Item {
	item := model.Item{
		Title:      lo.Ternary(strings.TrimSpace(entry.Title) != "", entry.Title, untitled),
		URL:        entry.Link,
		Source:     s.SourceName,
		Time:       gofeedTime(entry),
		By:         gofeedAuthor(entry),
		Thumbnail:  gofeedThumbnail(entry),
		Categories: entry.Categories,
	}

	if entry.Content != "" {
		item.Excerpt = Excerpt(entry.Content)
	} else {
		item.Excerpt = Excerpt(entry.Description)
	}

	return item
}

func (s *RSSSource) fromLenient(entry *rss.Item) model.Item {
	item := model.Item{
		Title:      lo.Ternary(strings.TrimSpace(entry.Title) != "", entry.Title, untitled),
		URL:        entry.Link,
		Source:     s.SourceName,
		Time:       entry.Date,
		Categories: entry.Categories,
	}

	raw := lo.Ternary(entry.Content != "", entry.Content, entry.Summary)
	item.Excerpt = Excerpt(raw)

	for _, enclosure := range entry.Enclosures {
		if enclosure != nil && enclosure.URL != "" && isImageType(enclosure.Type) {
			item.Thumbnail = enclosure.URL
			break
		}
	}
	if item.Thumbnail == "" {
		item.Thumbnail = FirstImage(raw)
	}

	return item
}

func gofeedTime(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}

	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed
	}

	return time.Time{}
}

func gofeedAuthor(entry *gofeed.Item) string {
	for _, author := range entry.Authors {
		if author != nil && strings.TrimSpace(author.Name) != "" {
			return author.Name
		}
	}

	if entry.DublinCoreExt != nil && len(entry.DublinCoreExt.Creator) > 0 {
		return entry.DublinCoreExt.Creator[0]
	}

	return ""
}

// Порядок поиска картинки:
// 1. явное медиа вложение (media:content, media:thumbnail, картинка записи)
// 2. enclosure с image/* типом
// 3. первый <img> в контенте или описании
func gofeedThumbnail(entry *gofeed.Item) string {
	if media, ok := entry.Extensions["media"]; ok {
		if url := mediaImage(media["content"]); url != "" {
			return url
		}

		for _, group := range media["group"] {
			if url := mediaImage(group.Children["content"]); url != "" {
				return url
			}
		}

		for _, thumbnail := range media["thumbnail"] {
			if url := thumbnail.Attrs["url"]; url != "" {
				return url
			}
		}
	}

	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}

	for _, enclosure := range entry.Enclosures {
		if enclosure != nil && enclosure.URL != "" && isImageType(enclosure.Type) {
			return enclosure.URL
		}
	}

	if entry.Content != "" {
		if url := FirstImage(entry.Content); url != "" {
			return url
		}
	}

	return FirstImage(entry.Description)
}

func mediaImage(contents []ext.Extension) string {
	for _, content := range contents {
		url := content.Attrs["url"]
		if url != "" && (content.Attrs["medium"] == "image" || isImageType(content.Attrs["type"])) {
			return url
		}
	}

	return ""
}

func isImageType(mime string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
}
