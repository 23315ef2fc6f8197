package aggregator

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/samber/lo"
)

// Strategy задает порядок ленты после агрегации.
type Strategy string

const (
	// Просто случайная перестановка всей ленты
	StrategyRandom Strategy = "random"
	// Сначала свежие, потом отдельно перемешиваем новости с картинкой и без,
	// новости с картинкой идут первыми
	StrategyRecency Strategy = "recency"
)

func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case "", StrategyRandom:
		return StrategyRandom, nil
	case StrategyRecency:
		return StrategyRecency, nil
	default:
		return "", fmt.Errorf("unknown order strategy %q", value)
	}
}

// order всегда возвращает новый слайс, входной не трогаем
func order(strategy Strategy, rng *rand.Rand, items []model.Item) []model.Item {
	ordered := append([]model.Item(nil), items...)

	if strategy != StrategyRecency {
		shuffle(rng, ordered)
		return ordered
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Time.After(ordered[j].Time)
	})

	hasThumbnail := func(item model.Item, _ int) bool { return item.Thumbnail != "" }

	withThumbnails := lo.Filter(ordered, hasThumbnail)
	withoutThumbnails := lo.Reject(ordered, hasThumbnail)

	shuffle(rng, withThumbnails)
	shuffle(rng, withoutThumbnails)

	return append(withThumbnails, withoutThumbnails...)
}

// Фишер-Йейтс: от последнего индекса к первому меняем с j из [0, i]
func shuffle(rng *rand.Rand, items []model.Item) {
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
