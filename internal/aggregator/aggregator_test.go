package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name  string
	items []model.Item
	err   error
	delay time.Duration
	panic bool

	calls atomic.Int32
}

func (f *fakeSource) Name() string {
	return f.name
}

func (f *fakeSource) Fetch(ctx context.Context, count int) ([]model.Item, error) {
	f.calls.Add(1)

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if f.panic {
		panic("adapter bug")
	}

	if f.err != nil {
		return nil, f.err
	}

	if count > 0 && len(f.items) > count {
		return f.items[:count], nil
	}

	return f.items, nil
}

func makeItems(source string, n int) []model.Item {
	items := make([]model.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, model.Item{
			Title:  fmt.Sprintf("%s story %d", source, i),
			URL:    fmt.Sprintf("https://%s.example.com/%d", source, i),
			Source: source,
			Time:   time.Unix(int64(1700000000+i), 0),
		})
	}
	return items
}

func newTestAggregator(entries []Entry, opts Options) (*Aggregator, *test.Hook) {
	log, hook := test.NewNullLogger()
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(42))
	}
	return New(entries, opts, log), hook
}

func errorEntries(hook *test.Hook) []*logrus.Entry {
	return lo.Filter(hook.AllEntries(), func(entry *logrus.Entry, _ int) bool {
		return entry.Level == logrus.ErrorLevel
	})
}

func TestAggregate_PartialFailure(t *testing.T) {
	one := &fakeSource{name: "one", items: makeItems("one", 5)}
	two := &fakeSource{name: "two", err: errors.New("connection refused")}
	three := &fakeSource{name: "three", items: makeItems("three", 3)}

	agg, hook := newTestAggregator([]Entry{
		{Source: one, Count: 5},
		{Source: two, Count: 5},
		{Source: three, Count: 5},
	}, Options{MaxItems: 6})

	items, err := agg.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 6)

	for _, item := range items {
		assert.Contains(t, []string{"one", "three"}, item.Source)
	}

	errs := errorEntries(hook)
	require.Len(t, errs, 1)
	assert.Equal(t, "two", errs[0].Data["source"])

	assert.Equal(t, int32(1), one.calls.Load())
	assert.Equal(t, int32(1), two.calls.Load())
	assert.Equal(t, int32(1), three.calls.Load())
}

func TestAggregate_NoTruncationBelowLimit(t *testing.T) {
	agg, _ := newTestAggregator([]Entry{
		{Source: &fakeSource{name: "a", items: makeItems("a", 2)}},
		{Source: &fakeSource{name: "b", items: makeItems("b", 3)}},
	}, Options{})

	items, err := agg.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestAggregate_AllSourcesFail(t *testing.T) {
	agg, hook := newTestAggregator([]Entry{
		{Source: &fakeSource{name: "a", err: errors.New("timeout")}},
		{Source: &fakeSource{name: "b", err: errors.New("bad json")}},
	}, Options{})

	items, err := agg.Aggregate(context.Background())
	assert.ErrorIs(t, err, ErrNoNews)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Len(t, errorEntries(hook), 2)
}

func TestAggregate_NoSources(t *testing.T) {
	agg, _ := newTestAggregator(nil, Options{})

	items, err := agg.Aggregate(context.Background())
	assert.ErrorIs(t, err, ErrNoNews)
	assert.Empty(t, items)
}

func TestAggregate_PanicIsIsolated(t *testing.T) {
	agg, hook := newTestAggregator([]Entry{
		{Source: &fakeSource{name: "broken", panic: true}},
		{Source: &fakeSource{name: "fine", items: makeItems("fine", 2)}},
	}, Options{})

	items, err := agg.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)

	errs := errorEntries(hook)
	require.Len(t, errs, 1)
	assert.Equal(t, "broken", errs[0].Data["source"])
}

func TestAggregate_SourcesRunConcurrently(t *testing.T) {
	const delay = 200 * time.Millisecond

	agg, _ := newTestAggregator([]Entry{
		{Source: &fakeSource{name: "a", items: makeItems("a", 1), delay: delay}},
		{Source: &fakeSource{name: "b", items: makeItems("b", 1), delay: delay}},
		{Source: &fakeSource{name: "c", items: makeItems("c", 1), delay: delay}},
	}, Options{})

	started := time.Now()
	items, err := agg.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Less(t, time.Since(started), 2*delay)
}

func TestAggregate_CountIsPassedToSource(t *testing.T) {
	agg, _ := newTestAggregator([]Entry{
		{Source: &fakeSource{name: "a", items: makeItems("a", 10)}, Count: 4},
	}, Options{})

	items, err := agg.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestAggregate_SourceTagComesFromAdapterName(t *testing.T) {
	items := makeItems("whatever", 2)

	agg, _ := newTestAggregator([]Entry{
		{Source: &fakeSource{name: "Go Blog", items: items}},
	}, Options{})

	got, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	for _, item := range got {
		assert.Equal(t, "Go Blog", item.Source)
	}
	// Исходные записи адаптера не меняются
	assert.Equal(t, "whatever", items[0].Source)
}

func TestAggregate_Dedupe(t *testing.T) {
	a := &fakeSource{name: "a", items: []model.Item{
		{Title: "Go 1.22 released", URL: "https://go.dev/blog/go1.22", Time: time.Now()},
		{Title: "Unique A", URL: "https://a.example.com/1", Time: time.Now()},
	}}
	b := &fakeSource{name: "b", items: []model.Item{
		{Title: "Go 1.22 is out", URL: "http://www.go.dev/blog/go1.22/", Time: time.Now()},
		{Title: "  unique   a ", URL: "https://mirror.example.com/unique-a", Time: time.Now()},
		{Title: "Unique B", URL: "https://b.example.com/1", Time: time.Now()},
	}}

	agg, _ := newTestAggregator([]Entry{{Source: a}, {Source: b}}, Options{})

	items, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	titles := lo.Map(items, func(item model.Item, _ int) string { return item.Title })
	assert.ElementsMatch(t, []string{"Go 1.22 released", "Unique A", "Unique B"}, titles)
}

func TestAggregate_FilterKeywords(t *testing.T) {
	src := &fakeSource{name: "a", items: []model.Item{
		{Title: "New CRYPTO exchange launched", URL: "https://a.example.com/1", Time: time.Now()},
		{Title: "Ledger update", URL: "https://a.example.com/2", Time: time.Now(), Categories: []string{"Blockchain"}},
		{Title: "Rust 2024 edition", URL: "https://a.example.com/3", Time: time.Now(), Categories: []string{"rust"}},
	}}

	agg, _ := newTestAggregator([]Entry{{Source: src}}, Options{FilterKeywords: []string{"crypto", " blockchain "}})

	items, err := agg.Aggregate(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Rust 2024 edition", items[0].Title)
}

type fakeFeedProvider struct {
	sources []model.Source
	err     error
}

func (f fakeFeedProvider) Sources(ctx context.Context) ([]model.Source, error) {
	return f.sources, f.err
}

func TestAggregate_FeedProvider(t *testing.T) {
	provider := fakeFeedProvider{sources: []model.Source{
		{ID: 1, Name: "Registry feed", FeedURL: "https://feed.example.com/rss"},
	}}

	var gotCount int
	agg, _ := newTestAggregator([]Entry{
		{Source: &fakeSource{name: "static", items: makeItems("static", 1)}},
	}, Options{FeedCount: 3})

	agg.WithFeedProvider(provider, func(m model.Source) Source {
		return &countingSource{fakeSource: &fakeSource{name: m.Name, items: makeItems("registry", 5)}, count: &gotCount}
	})

	items, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	bySource := lo.CountValuesBy(items, func(item model.Item) string { return item.Source })
	assert.Equal(t, 1, bySource["static"])
	assert.Equal(t, 3, bySource["Registry feed"])
	assert.Equal(t, 3, gotCount)
}

func TestAggregate_FeedProviderFailure(t *testing.T) {
	agg, hook := newTestAggregator([]Entry{
		{Source: &fakeSource{name: "static", items: makeItems("static", 2)}},
	}, Options{})

	agg.WithFeedProvider(fakeFeedProvider{err: errors.New("db down")}, func(m model.Source) Source {
		t.Fatal("no feeds expected")
		return nil
	})

	items, err := agg.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Len(t, errorEntries(hook), 1)
}

type countingSource struct {
	*fakeSource
	count *int
}

func (c *countingSource) Fetch(ctx context.Context, count int) ([]model.Item, error) {
	*c.count = count
	return c.fakeSource.Fetch(ctx, count)
}

func TestAggregate_SameSeedSameOrder(t *testing.T) {
	entries := func() []Entry {
		return []Entry{{Source: &fakeSource{name: "a", items: makeItems("a", 10)}}}
	}

	first, _ := newTestAggregator(entries(), Options{Rand: rand.New(rand.NewSource(7))})
	second, _ := newTestAggregator(entries(), Options{Rand: rand.New(rand.NewSource(7))})

	a, err := first.Aggregate(context.Background())
	require.NoError(t, err)
	b, err := second.Aggregate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestReorder_KeepsItemsAndInput(t *testing.T) {
	agg, _ := newTestAggregator(nil, Options{})

	items := makeItems("a", 20)
	original := append([]model.Item(nil), items...)

	reordered := agg.Reorder(items)
	assert.ElementsMatch(t, original, reordered)
	assert.Equal(t, original, items)
}
