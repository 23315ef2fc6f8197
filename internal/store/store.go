package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kovalyov-valentin/dev-news-feed/internal/aggregator"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/kovalyov-valentin/dev-news-feed/internal/rotation"
	"github.com/sirupsen/logrus"
)

const (
	DefaultRefreshInterval = 30 * time.Minute
	DefaultFetchInterval   = 30 * time.Minute
)

type Aggregator interface {
	Aggregate(ctx context.Context) ([]model.Item, error)
	Reorder(items []model.Item) []model.Item
}

type Options struct {
	// Если с прошлой успешной агрегации прошло меньше, то Refresh(false) только перемешивает ленту
	RefreshInterval time.Duration
	// Как часто фоновый цикл ходит в источники
	FetchInterval time.Duration
	// Для тестов
	Now func() time.Time
}

// Store единственный источник правды для всех поверхностей отображения.
// Лента заменяется только целиком, курсор двигается только через методы Store
type Store struct {
	agg Aggregator

	refreshInterval time.Duration
	fetchInterval   time.Duration
	now             func() time.Time

	// Две агрегации одновременно не запускаем
	refreshMu sync.Mutex

	mu        sync.Mutex
	items     []model.Item
	cursor    rotation.Cursor
	lastFetch time.Time

	replaced chan struct{}

	log logrus.FieldLogger
}

func New(agg Aggregator, opts Options, log logrus.FieldLogger) *Store {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.FetchInterval <= 0 {
		opts.FetchInterval = DefaultFetchInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store{
		agg:             agg,
		refreshInterval: opts.RefreshInterval,
		fetchInterval:   opts.FetchInterval,
		now:             opts.Now,
		replaced:        make(chan struct{}, 1),
		log:             log,
	}
}

// Start обновляет ленту сразу и потом раз в FetchInterval.
// Плановое обновление всегда идет в источники, троттлинг касается только Refresh(false)
func (s *Store) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.fetchInterval)
	defer ticker.Stop()

	s.scheduledRefresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.scheduledRefresh(ctx)
		}
	}
}

func (s *Store) scheduledRefresh(ctx context.Context) {
	snapshot, err := s.Refresh(ctx, true)
	switch {
	case errors.Is(err, aggregator.ErrNoNews):
		s.log.Warn("no news available after refresh")
	case err != nil:
		if !errors.Is(err, context.Canceled) {
			s.log.WithError(err).Error("refreshing feed")
		}
	default:
		s.log.WithField("count", len(snapshot.Items)).Info("feed refreshed")
	}
}

// Refresh собирает ленту заново.
// Без force, если лента не пустая и еще свежая, источники не опрашиваются:
// ленту только перемешиваем и ставим курсор в начало.
// Пустой результат заменяет ленту на пустую и возвращает aggregator.ErrNoNews
func (s *Store) Refresh(ctx context.Context, force bool) (model.Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if !force {
		if snapshot, ok := s.reshuffleIfFresh(); ok {
			return snapshot, nil
		}
	}

	items, err := s.agg.Aggregate(ctx)
	if err != nil && !errors.Is(err, aggregator.ErrNoNews) {
		return s.Snapshot(), err
	}

	// Приложение останавливается, пустой результат из-за отмены ленту не затирает
	if ctx.Err() != nil {
		return s.Snapshot(), ctx.Err()
	}

	s.mu.Lock()
	s.items = append([]model.Item(nil), items...)
	s.cursor.Reset(len(s.items))
	if len(s.items) > 0 {
		s.lastFetch = s.now()
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	feedItems.Set(float64(len(snapshot.Items)))
	s.notify()

	if snapshot.Empty() {
		return snapshot, aggregator.ErrNoNews
	}

	return snapshot, nil
}

func (s *Store) reshuffleIfFresh() (model.Snapshot, bool) {
	s.mu.Lock()

	if len(s.items) == 0 || s.lastFetch.IsZero() || s.now().Sub(s.lastFetch) >= s.refreshInterval {
		s.mu.Unlock()
		return model.Snapshot{}, false
	}

	s.items = s.agg.Reorder(s.items)
	s.cursor.Reset(len(s.items))
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.log.WithField("last_fetch", snapshot.FetchedAt).Debug("refresh throttled, feed reshuffled")
	s.notify()

	return snapshot, true
}

func (s *Store) Next() model.Snapshot {
	return s.advance(1)
}

func (s *Store) Previous() model.Snapshot {
	return s.advance(-1)
}

func (s *Store) advance(delta int) model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursor.Advance(delta)
	return s.snapshotLocked()
}

// Select игнорирует индекс за пределами ленты.
func (s *Store) Select(i int) model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursor.Select(i)
	return s.snapshotLocked()
}

func (s *Store) CurrentItem() (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, ok := s.cursor.Index()
	if !ok {
		return model.Item{}, false
	}

	return s.items[index], true
}

func (s *Store) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Replaced сигналит после каждой замены ленты (в том числе после перемешивания).
// Канал рассчитан на одного читателя, лишние сигналы схлопываются
func (s *Store) Replaced() <-chan struct{} {
	return s.replaced
}

func (s *Store) notify() {
	select {
	case s.replaced <- struct{}{}:
	default:
	}
}

func (s *Store) snapshotLocked() model.Snapshot {
	index, _ := s.cursor.Index()

	return model.Snapshot{
		Items:     append([]model.Item(nil), s.items...),
		Index:     index,
		FetchedAt: s.lastFetch,
	}
}
