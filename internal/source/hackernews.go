package source

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/sirupsen/logrus"
)

const (
	HackerNewsName         = "Hacker News"
	HackerNewsBaseURL      = "https://hacker-news.firebaseio.com/v0"
	hackerNewsPermalink    = "https://news.ycombinator.com/item?id=%d"
	defaultHackerNewsCount = 8
)

// Клиент API Hacker News.
// Сначала берем рейтинг id, потом каждую запись отдельным запросом
type HackerNews struct {
	client  *Client
	baseURL string
	log     logrus.FieldLogger
}

func NewHackerNews(client *Client, baseURL string, log logrus.FieldLogger) *HackerNews {
	if baseURL == "" {
		baseURL = HackerNewsBaseURL
	}

	return &HackerNews{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log.WithField("source", HackerNewsName),
	}
}

func (h *HackerNews) Name() string {
	return HackerNewsName
}

func (h *HackerNews) Fetch(ctx context.Context, count int) ([]model.Item, error) {
	if count <= 0 {
		count = defaultHackerNewsCount
	}

	var ids []int64
	if err := h.client.GetJSON(ctx, h.baseURL+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}

	if len(ids) > count {
		ids = ids[:count]
	}

	// Записи приходят в произвольном порядке, поэтому раскладываем их по позиции в рейтинге.
	// Упавшая запись оставляет nil и просто выпадает из результата
	stories := make([]*hackerNewsStory, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)

		go func(pos int, id int64) {
			defer wg.Done()

			story, err := h.story(ctx, id)
			if err != nil {
				h.log.WithError(err).WithField("id", id).Warn("skipping story")
				return
			}

			stories[pos] = story
		}(i, id)
	}

	wg.Wait()

	items := make([]model.Item, 0, len(stories))
	for _, story := range stories {
		if story == nil || story.Deleted || story.Dead {
			continue
		}

		item, err := model.NewItem(story.toItem())
		if err != nil {
			h.log.WithError(err).WithField("id", story.ID).Debug("dropping story")
			continue
		}

		items = append(items, item)
	}

	return items, nil
}

func (h *HackerNews) story(ctx context.Context, id int64) (*hackerNewsStory, error) {
	var story *hackerNewsStory
	if err := h.client.GetJSON(ctx, fmt.Sprintf("%s/item/%d.json", h.baseURL, id), &story); err != nil {
		return nil, err
	}

	// API отвечает null на несуществующий id
	if story == nil {
		return nil, fmt.Errorf("story %d not found", id)
	}

	return story, nil
}

type hackerNewsStory struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Time        int64  `json:"time"`
	By          string `json:"by"`
	Score       *int   `json:"score"`
	Descendants *int   `json:"descendants"`
	Deleted     bool   `json:"deleted"`
	Dead        bool   `json:"dead"`
}

func (s hackerNewsStory) toItem() model.Item {
	item := model.Item{
		Title:       s.Title,
		URL:         s.URL,
		Source:      HackerNewsName,
		By:          s.By,
		Score:       s.Score,
		Descendants: s.Descendants,
	}

	// Ask HN и подобные посты живут только на самом HN
	if strings.TrimSpace(item.URL) == "" {
		item.URL = fmt.Sprintf(hackerNewsPermalink, s.ID)
	}

	if s.Time > 0 {
		item.Time = time.Unix(s.Time, 0)
	}

	return item
}
