package model

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidItem возвращается, когда у записи нет заголовка или источника.
var ErrInvalidItem = errors.New("invalid news item")

// Новость как элемент общей ленты
type Item struct {
	// Заголовок, в хранилище никогда не обрезается
	Title string `json:"title"`
	// Ссылка на материал или на страницу обсуждения в источнике.
	// Пустая строка означает, что ссылки нет
	URL string `json:"url"`
	// Имя источника ("Hacker News", "Lobsters", имя фида)
	Source string `json:"source"`
	// Время публикации. Если источник его не отдал, то время получения
	Time time.Time `json:"time"`
	// Автор
	By string `json:"by,omitempty"`
	// Метрики вовлеченности, есть не у всех источников
	Score       *int `json:"score,omitempty"`
	Descendants *int `json:"descendants,omitempty"`
	// Текст без html, не длиннее ExcerptLimit символов
	Excerpt string `json:"excerpt,omitempty"`
	// Картинка для превью
	Thumbnail string `json:"thumbnail,omitempty"`
	// Теги/категории источника, используются только фильтром по ключевым словам
	Categories []string `json:"categories,omitempty"`
}

// NewItem нормализует и проверяет запись на границе адаптера.
// Адаптеры не должны возвращать записи, собранные в обход этой функции.
func NewItem(item Item) (Item, error) {
	item.Title = strings.TrimSpace(item.Title)
	item.Source = strings.TrimSpace(item.Source)
	item.URL = strings.TrimSpace(item.URL)
	item.By = strings.TrimSpace(item.By)
	item.Thumbnail = strings.TrimSpace(item.Thumbnail)

	if item.Title == "" || item.Source == "" {
		return Item{}, ErrInvalidItem
	}

	if item.Time.IsZero() {
		item.Time = time.Now()
	}
	item.Time = item.Time.Truncate(time.Second).UTC()

	if len(item.Categories) > 0 {
		item.Categories = append([]string(nil), item.Categories...)
	}

	return item, nil
}

// Unix возвращает время публикации в секундах.
func (i Item) Unix() int64 {
	return i.Time.Unix()
}

// HasLink сообщает, можно ли открыть запись.
func (i Item) HasLink() bool {
	return i.URL != ""
}

// IntPtr нужен адаптерам для опциональных метрик.
func IntPtr(v int) *int {
	return &v
}

// Состояние ленты на момент чтения.
// Items это копия, ее можно свободно отдавать в слой отображения
type Snapshot struct {
	Items []Item
	// -1, когда лента пуста
	Index     int
	FetchedAt time.Time
}

func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}

func (s Snapshot) Current() (Item, bool) {
	if s.Index < 0 || s.Index >= len(s.Items) {
		return Item{}, false
	}

	return s.Items[s.Index], true
}

// Модель фида, который хранится в реестре источников или в конфиге
type Source struct {
	ID int64
	// Имя, оно же тег источника у новостей
	Name string
	// Урл откуда забираем данные
	FeedURL string
	// Время создания
	CreatedAt time.Time
}
