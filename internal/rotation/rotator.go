package rotation

import (
	"context"
	"time"

	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/sirupsen/logrus"
)

const DefaultInterval = 10 * time.Second

// Лента, по которой крутится ротация. Реализует store.Store
type Target interface {
	Next() model.Snapshot
	Snapshot() model.Snapshot
	// Сигнал о том, что ленту заменили целиком
	Replaced() <-chan struct{}
}

// Поверхность, которая показывает текущую новость
type Display interface {
	Show(snapshot model.Snapshot)
}

type DisplayFunc func(snapshot model.Snapshot)

func (f DisplayFunc) Show(snapshot model.Snapshot) {
	f(snapshot)
}

// Rotator раз в interval переключает ленту на следующую новость.
type Rotator struct {
	target   Target
	display  Display
	interval time.Duration
	log      logrus.FieldLogger
}

func NewRotator(target Target, display Display, interval time.Duration, log logrus.FieldLogger) *Rotator {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Rotator{
		target:   target,
		display:  display,
		interval: interval,
		log:      log,
	}
}

// Start работает в отдельной горутине до отмены контекста.
// После замены ленты старое расписание отменяется и начинается новое
func (r *Rotator) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer func() {
		ticker.Stop()
	}()

	r.display.Show(r.target.Snapshot())

	for {
		select {
		case <-ctx.Done():
			r.log.Debug("rotation stopped")
			return ctx.Err()
		case <-r.target.Replaced():
			ticker.Stop()
			ticker = time.NewTicker(r.interval)

			r.display.Show(r.target.Snapshot())
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Rotator) tick() {
	// Крутить нечего
	if len(r.target.Snapshot().Items) <= 1 {
		return
	}

	r.display.Show(r.target.Next())
}
