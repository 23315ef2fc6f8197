package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const (
	DevToName          = "DEV.to"
	DevToBaseURL       = "https://dev.to/api"
	defaultDevToCount  = 5
	devToTopPeriodDays = "7"
)

type DevTo struct {
	client  *Client
	baseURL string
	log     logrus.FieldLogger
}

func NewDevTo(client *Client, baseURL string, log logrus.FieldLogger) *DevTo {
	if baseURL == "" {
		baseURL = DevToBaseURL
	}

	return &DevTo{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log.WithField("source", DevToName),
	}
}

func (d *DevTo) Name() string {
	return DevToName
}

// Fetch берет топ статей за неделю.
func (d *DevTo) Fetch(ctx context.Context, count int) ([]model.Item, error) {
	if count <= 0 {
		count = defaultDevToCount
	}

	query := url.Values{}
	query.Set("top", devToTopPeriodDays)
	query.Set("per_page", strconv.Itoa(count))

	var articles []devToArticle
	if err := d.client.GetJSON(ctx, d.baseURL+"/articles?"+query.Encode(), &articles); err != nil {
		return nil, fmt.Errorf("fetch top articles: %w", err)
	}

	if len(articles) > count {
		articles = articles[:count]
	}

	items := make([]model.Item, 0, len(articles))
	for _, article := range articles {
		item, err := model.NewItem(article.toItem())
		if err != nil {
			d.log.WithError(err).WithField("url", article.URL).Debug("dropping article")
			continue
		}

		items = append(items, item)
	}

	return items, nil
}

type devToArticle struct {
	Title                string   `json:"title"`
	URL                  string   `json:"url"`
	Description          string   `json:"description"`
	PublishedAt          string   `json:"published_at"`
	CoverImage           string   `json:"cover_image"`
	SocialImage          string   `json:"social_image"`
	PublicReactionsCount *int     `json:"public_reactions_count"`
	CommentsCount        *int     `json:"comments_count"`
	TagList              []string `json:"tag_list"`
	User                 struct {
		Name string `json:"name"`
	} `json:"user"`
}

func (a devToArticle) toItem() model.Item {
	return model.Item{
		Title:       a.Title,
		URL:         a.URL,
		Source:      DevToName,
		Time:        parseTime(a.PublishedAt),
		By:          a.User.Name,
		Score:       a.PublicReactionsCount,
		Descendants: a.CommentsCount,
		Excerpt:     truncate(collapseSpaces(a.Description), ExcerptLimit),
		Thumbnail:   lo.Ternary(a.CoverImage != "", a.CoverImage, a.SocialImage),
		Categories:  a.TagList,
	}
}
