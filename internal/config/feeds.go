package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"gopkg.in/yaml.v3"
)

// Фид из yaml файла
type Feed struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled *bool  `yaml:"enabled"`
}

type feedsFile struct {
	Feeds []Feed `yaml:"feeds"`
}

// DefaultFeeds используется, когда feeds_file не задан.
var DefaultFeeds = []Feed{
	{Name: "TechCrunch", URL: "https://techcrunch.com/feed/"},
	{Name: "DEV.to", URL: "https://dev.to/feed/"},
	{Name: "Mashable", URL: "https://mashable.com/feeds/rss/all"},
	{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml"},
	{Name: "TNW", URL: "https://thenextweb.com/feed"},
	{Name: "Engadget", URL: "https://www.engadget.com/rss.xml"},
	{Name: "Wired", URL: "https://www.wired.com/feed/rss"},
	{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/index"},
	{Name: "ZDNet", URL: "https://www.zdnet.com/news/rss.xml"},
	{Name: "VentureBeat", URL: "https://venturebeat.com/feed/"},
	{Name: "ReadWrite", URL: "https://readwrite.com/feed/"},
	{Name: "Gizmodo", URL: "https://gizmodo.com/rss"},
	{Name: "TechRepublic", URL: "https://www.techrepublic.com/rssfeeds/articles/"},
	{Name: "TechRadar", URL: "https://www.techradar.com/rss"},
	{Name: "9to5Mac", URL: "https://9to5mac.com/feed/"},
}

// LoadFeeds читает список фидов. Пустой путь дает встроенный список.
// Выключенные фиды и записи без имени или адреса в результат не попадают
func LoadFeeds(path string) ([]model.Source, error) {
	feeds := DefaultFeeds

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read feeds file: %w", err)
		}

		var file feedsFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode feeds file %s: %w", path, err)
		}

		feeds = file.Feeds
	}

	sources := make([]model.Source, 0, len(feeds))
	for _, feed := range feeds {
		if feed.Enabled != nil && !*feed.Enabled {
			continue
		}

		name, url := strings.TrimSpace(feed.Name), strings.TrimSpace(feed.URL)
		if name == "" || url == "" {
			continue
		}

		sources = append(sources, model.Source{Name: name, FeedURL: url})
	}

	return sources, nil
}
