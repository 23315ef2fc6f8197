package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/sirupsen/logrus"
)

const (
	LobstersName         = "Lobsters"
	LobstersBaseURL      = "https://lobste.rs"
	lobstersPermalink    = "https://lobste.rs/s/%s"
	defaultLobstersCount = 5
)

// Клиент Lobsters: одним запросом получаем сразу полные записи
type Lobsters struct {
	client  *Client
	baseURL string
	log     logrus.FieldLogger
}

func NewLobsters(client *Client, baseURL string, log logrus.FieldLogger) *Lobsters {
	if baseURL == "" {
		baseURL = LobstersBaseURL
	}

	return &Lobsters{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log.WithField("source", LobstersName),
	}
}

func (l *Lobsters) Name() string {
	return LobstersName
}

func (l *Lobsters) Fetch(ctx context.Context, count int) ([]model.Item, error) {
	if count <= 0 {
		count = defaultLobstersCount
	}

	var stories []lobstersStory
	if err := l.client.GetJSON(ctx, l.baseURL+"/hottest.json", &stories); err != nil {
		return nil, fmt.Errorf("fetch hottest: %w", err)
	}

	if len(stories) > count {
		stories = stories[:count]
	}

	items := make([]model.Item, 0, len(stories))
	for _, story := range stories {
		item, err := model.NewItem(story.toItem())
		if err != nil {
			l.log.WithError(err).WithField("short_id", story.ShortID).Debug("dropping story")
			continue
		}

		items = append(items, item)
	}

	return items, nil
}

type lobstersStory struct {
	ShortID          string            `json:"short_id"`
	Title            string            `json:"title"`
	URL              string            `json:"url"`
	CreatedAt        string            `json:"created_at"`
	Score            *int              `json:"score"`
	CommentCount     *int              `json:"comment_count"`
	DescriptionPlain string            `json:"description_plain"`
	Tags             []string          `json:"tags"`
	Submitter        lobstersSubmitter `json:"submitter_user"`
}

func (s lobstersStory) toItem() model.Item {
	item := model.Item{
		Title:       s.Title,
		URL:         s.URL,
		Source:      LobstersName,
		Time:        parseTime(s.CreatedAt),
		By:          string(s.Submitter),
		Score:       s.Score,
		Descendants: s.CommentCount,
		Excerpt:     truncate(collapseSpaces(s.DescriptionPlain), ExcerptLimit),
		Categories:  s.Tags,
	}

	if strings.TrimSpace(item.URL) == "" && s.ShortID != "" {
		item.URL = fmt.Sprintf(lobstersPermalink, s.ShortID)
	}

	return item
}

// Раньше API отдавал автора объектом {"username": ...}, сейчас отдает строкой.
// Принимаем оба варианта
type lobstersSubmitter string

func (s *lobstersSubmitter) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*s = lobstersSubmitter(name)
		return nil
	}

	var user struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &user); err != nil {
		// Неизвестная форма автора не должна ломать всю ленту
		return nil
	}
	*s = lobstersSubmitter(user.Username)

	return nil
}
