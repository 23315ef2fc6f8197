package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "dev-news-feed/1.0 (+https://github.com/kovalyov-valentin/dev-news-feed)"

	// Больше этого ни один из источников не отдает, все что сверху считаем мусором
	maxBodySize = 8 << 20
)

// Общий http клиент для всех адаптеров.
// Каждый запрос ограничен своим таймаутом, независимо от контекста вызывающего
type Client struct {
	http      *http.Client
	timeout   time.Duration
	userAgent string
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// Get забирает тело ответа. Любой статус кроме 2xx считается ошибкой.
func (c *Client) Get(ctx context.Context, url string, accept string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", url, err)
	}

	return body, nil
}

func (c *Client) GetJSON(ctx context.Context, url string, dst any) error {
	body, err := c.Get(ctx, url, "application/json")
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}

	return nil
}
