package summary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
)

var ErrNoText = errors.New("nothing to summarize")

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ArticleSummarizer готовит текст новости и отдает его в Summarizer.
type ArticleSummarizer struct {
	client     *http.Client
	summarizer Summarizer
}

func NewArticleSummarizer(summarizer Summarizer, timeout time.Duration) *ArticleSummarizer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ArticleSummarizer{
		client:     &http.Client{Timeout: timeout},
		summarizer: summarizer,
	}
}

// Summarize берет выжимку новости, если она есть.
// Иначе идем по ссылке и достаем текст страницы через readability
func (a *ArticleSummarizer) Summarize(ctx context.Context, item model.Item) (string, error) {
	text, err := a.text(ctx, item)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}

	return a.summarizer.Summarize(ctx, text)
}

func (a *ArticleSummarizer) text(ctx context.Context, item model.Item) (string, error) {
	if item.Excerpt != "" {
		return item.Excerpt, nil
	}

	if !item.HasLink() {
		return "", ErrNoText
	}

	pageURL, err := url.Parse(item.URL)
	if err != nil {
		return "", fmt.Errorf("parse item url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch article: unexpected status %s", resp.Status)
	}

	doc, err := readability.FromReader(io.LimitReader(resp.Body, 4<<20), pageURL)
	if err != nil {
		return "", fmt.Errorf("extract article: %w", err)
	}

	return cleanText(doc.TextContent), nil
}

// readability оставляет много пустых строк, три и больше подряд схлопываем в одну
var redundantNewLines = regexp.MustCompile(`\n{3,}`)

func cleanText(text string) string {
	return strings.TrimSpace(redundantNewLines.ReplaceAllString(text, "\n"))
}
