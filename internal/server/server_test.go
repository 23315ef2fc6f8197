package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kovalyov-valentin/dev-news-feed/internal/aggregator"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/kovalyov-valentin/dev-news-feed/internal/store"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAggregator struct {
	items []model.Item
	calls int
}

func (f *fakeAggregator) Aggregate(ctx context.Context) ([]model.Item, error) {
	f.calls++
	if len(f.items) == 0 {
		return []model.Item{}, aggregator.ErrNoNews
	}
	return f.items, nil
}

func (f *fakeAggregator) Reorder(items []model.Item) []model.Item {
	return append([]model.Item(nil), items...)
}

func testItems(n int) []model.Item {
	items := make([]model.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, model.Item{
			Title:  fmt.Sprintf("Story %d", i),
			URL:    fmt.Sprintf("https://example.com/%d", i),
			Source: "Hacker News",
			Time:   time.Unix(int64(1700000000+i), 0).UTC(),
			Score:  model.IntPtr(i * 10),
		})
	}
	return items
}

func newTestServer(t *testing.T, agg *fakeAggregator, prefill bool) (*store.Store, func(method, target string) (*http.Response, []byte)) {
	t.Helper()

	log, _ := test.NewNullLogger()
	feed := store.New(agg, store.Options{}, log)

	if prefill {
		_, err := feed.Refresh(context.Background(), true)
		require.NoError(t, err)
	}

	app := New(feed, log)

	do := func(method, target string) (*http.Response, []byte) {
		resp, err := app.Test(httptest.NewRequest(method, target, nil), -1)
		require.NoError(t, err)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()

		return resp, body
	}

	return feed, do
}

func decodeFeed(t *testing.T, body []byte) feedResponse {
	t.Helper()

	var resp feedResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestFeedEndpoints(t *testing.T) {
	_, do := newTestServer(t, &fakeAggregator{items: testItems(3)}, true)

	resp, body := do(http.MethodGet, "/api/feed")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	feed := decodeFeed(t, body)
	assert.Len(t, feed.Items, 3)
	assert.Equal(t, 0, feed.CurrentIndex)
	require.NotNil(t, feed.LastFetch)
	assert.Equal(t, int64(1700000000), feed.Items[0].Time)
	assert.Equal(t, "Hacker News", feed.Items[0].Source)

	resp, body = do(http.MethodPost, "/api/feed/next")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decodeFeed(t, body).CurrentIndex)

	_, body = do(http.MethodPost, "/api/feed/previous")
	assert.Equal(t, 0, decodeFeed(t, body).CurrentIndex)

	_, body = do(http.MethodPost, "/api/feed/previous")
	assert.Equal(t, 2, decodeFeed(t, body).CurrentIndex)

	_, body = do(http.MethodPost, "/api/feed/select/1")
	assert.Equal(t, 1, decodeFeed(t, body).CurrentIndex)

	resp, body = do(http.MethodGet, "/api/feed/current")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var item itemResponse
	require.NoError(t, json.Unmarshal(body, &item))
	assert.Equal(t, "Story 1", item.Title)
	require.NotNil(t, item.Score)
	assert.Equal(t, 10, *item.Score)
}

func TestSelectOutOfRange(t *testing.T) {
	_, do := newTestServer(t, &fakeAggregator{items: testItems(3)}, true)

	_, body := do(http.MethodPost, "/api/feed/select/2")
	assert.Equal(t, 2, decodeFeed(t, body).CurrentIndex)

	resp, body := do(http.MethodPost, "/api/feed/select/9")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decodeFeed(t, body).CurrentIndex)

	resp, _ = do(http.MethodPost, "/api/feed/select/abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEmptyFeed(t *testing.T) {
	_, do := newTestServer(t, &fakeAggregator{}, false)

	resp, _ := do(http.MethodGet, "/api/feed/current")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body := do(http.MethodGet, "/api/feed")
	feed := decodeFeed(t, body)
	assert.Empty(t, feed.Items)
	assert.NotNil(t, feed.Items)
	assert.Equal(t, -1, feed.CurrentIndex)
	assert.Nil(t, feed.LastFetch)

	resp, body = do(http.MethodPost, "/api/feed/refresh")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, -1, decodeFeed(t, body).CurrentIndex)
}

func TestRefresh(t *testing.T) {
	agg := &fakeAggregator{items: testItems(2)}
	_, do := newTestServer(t, agg, true)

	resp, body := do(http.MethodPost, "/api/feed/refresh")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeFeed(t, body).Items, 2)
	assert.Equal(t, 2, agg.calls)

	// Лента свежая, без force источники не опрашиваются
	resp, _ = do(http.MethodPost, "/api/feed/refresh?force=false")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, agg.calls)
}

func TestMetrics(t *testing.T) {
	_, do := newTestServer(t, &fakeAggregator{items: testItems(1)}, true)

	resp, body := do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "devnews_feed_items"))
}
