package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/tomakado/containers/set"
)

const DefaultMaxItems = 30

// ErrNoNews означает, что после опроса всех источников не осталось ни одной новости.
var ErrNoNews = errors.New("no news available")

// Интерфейс источника.
// Ошибка всего источника возвращается наверх, ошибки отдельных записей адаптер гасит сам
type Source interface {
	Name() string
	Fetch(ctx context.Context, count int) ([]model.Item, error)
}

// Дополнительные фиды из реестра, опрашиваются при каждой агрегации
type FeedProvider interface {
	Sources(ctx context.Context) ([]model.Source, error)
}

// Источник и сколько записей из него брать
type Entry struct {
	Source Source
	Count  int
}

type Options struct {
	// Сколько новостей оставляем после сортировки
	MaxItems int
	Strategy Strategy
	// Новости с этими словами в заголовке или категориях пропускаем
	FilterKeywords []string
	// Сколько записей брать из фидов реестра
	FeedCount int
	// Для тестов, по умолчанию случайный сид
	Rand *rand.Rand
}

// Структура агрегатора
type Aggregator struct {
	entries []Entry

	feeds     FeedProvider
	feedCount int
	newFeed   func(model.Source) Source

	maxItems       int
	strategy       Strategy
	filterKeywords []string

	// rand.Rand не потокобезопасен
	mu  sync.Mutex
	rng *rand.Rand

	log logrus.FieldLogger
}

func New(entries []Entry, opts Options, log logrus.FieldLogger) *Aggregator {
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyRandom
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Aggregator{
		entries:   append([]Entry(nil), entries...),
		feedCount: opts.FeedCount,
		maxItems:  opts.MaxItems,
		strategy:  opts.Strategy,
		filterKeywords: lo.Map(opts.FilterKeywords, func(keyword string, _ int) string {
			return strings.ToLower(strings.TrimSpace(keyword))
		}),
		rng: opts.Rand,
		log: log,
	}
}

// WithFeedProvider подключает реестр фидов. newFeed строит клиент для каждой записи реестра.
func (a *Aggregator) WithFeedProvider(provider FeedProvider, newFeed func(model.Source) Source) *Aggregator {
	a.feeds = provider
	a.newFeed = newFeed
	return a
}

// Aggregate опрашивает все источники параллельно и собирает общую ленту.
// Упавший источник дает ноль новостей и не мешает остальным.
func (a *Aggregator) Aggregate(ctx context.Context) ([]model.Item, error) {
	started := time.Now()
	defer func() {
		aggregateDuration.Observe(time.Since(started).Seconds())
	}()

	entries := a.sources(ctx)

	// Ходим по источникам параллельно: медленный или сломанный источник не должен задерживать остальные дольше своего таймаута.
	// Результаты складываем по позиции, чтобы до перемешивания сохранялся порядок из конфига
	results := make([][]model.Item, len(entries))

	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)

		go func(pos int, entry Entry) {
			defer wg.Done()

			name := entry.Source.Name()

			items, err := a.fetch(ctx, entry)
			if err != nil {
				a.log.WithField("source", name).WithError(err).Error("fetching items from source")
				sourceFetches.WithLabelValues(name, "error").Inc()
				sourceItems.WithLabelValues(name).Set(0)
				return
			}

			a.log.WithFields(logrus.Fields{"source": name, "count": len(items)}).Info("fetched items from source")
			sourceFetches.WithLabelValues(name, "ok").Inc()
			sourceItems.WithLabelValues(name).Set(float64(len(items)))

			results[pos] = items
		}(i, entry)
	}

	wg.Wait()

	items := a.processItems(lo.Flatten(results))
	if len(items) == 0 {
		return []model.Item{}, ErrNoNews
	}

	return items, nil
}

// Reorder заново применяет стратегию к уже собранной ленте, без запросов и без обрезки.
func (a *Aggregator) Reorder(items []model.Item) []model.Item {
	a.mu.Lock()
	defer a.mu.Unlock()

	return order(a.strategy, a.rng, items)
}

func (a *Aggregator) sources(ctx context.Context) []Entry {
	entries := append([]Entry(nil), a.entries...)

	if a.feeds == nil || a.newFeed == nil {
		return entries
	}

	feeds, err := a.feeds.Sources(ctx)
	if err != nil {
		a.log.WithError(err).Error("loading feeds from registry")
		return entries
	}

	for _, feed := range feeds {
		entries = append(entries, Entry{Source: a.newFeed(feed), Count: a.feedCount})
	}

	return entries
}

// Паника в адаптере превращается в ошибку этого источника
func (a *Aggregator) fetch(ctx context.Context, entry Entry) (items []model.Item, err error) {
	defer func() {
		if p := recover(); p != nil {
			a.log.WithField("stack", string(debug.Stack())).Debug("source panicked")
			err = fmt.Errorf("source panicked: %v", p)
		}
	}()

	items, err = entry.Source.Fetch(ctx, entry.Count)
	if err != nil {
		return nil, err
	}

	// Агрегатор главный по тегу источника, даже если адаптер поставил свой
	name := entry.Source.Name()
	return lo.Map(items, func(item model.Item, _ int) model.Item {
		item.Source = name
		return item
	}), nil
}

// Фильтр, дедупликация, порядок и обрезка до MaxItems
func (a *Aggregator) processItems(items []model.Item) []model.Item {
	items = lo.Reject(items, func(item model.Item, _ int) bool {
		return a.itemShouldBeSkipped(item)
	})

	items = dedupe(items)
	items = a.Reorder(items)

	if len(items) > a.maxItems {
		items = items[:a.maxItems]
	}

	return items
}

// Проходимся по категориям новости и по заголовку.
// Если там есть ключевое слово из фильтра, новость пропускаем
func (a *Aggregator) itemShouldBeSkipped(item model.Item) bool {
	if len(a.filterKeywords) == 0 {
		return false
	}

	categoriesSet := set.New(lo.Map(item.Categories, func(category string, _ int) string {
		return strings.ToLower(category)
	})...)
	title := strings.ToLower(item.Title)

	for _, keyword := range a.filterKeywords {
		if keyword == "" {
			continue
		}

		if categoriesSet.Contains(keyword) || strings.Contains(title, keyword) {
			return true
		}
	}

	return false
}
