package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	published := time.Date(2024, 5, 1, 12, 30, 15, 999, time.FixedZone("MSK", 3*60*60))

	item, err := NewItem(Item{
		Title:      "  Go 1.22  ",
		URL:        " https://go.dev/blog/go1.22 ",
		Source:     "Go Blog",
		Time:       published,
		Categories: []string{"go"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Go 1.22", item.Title)
	assert.Equal(t, "https://go.dev/blog/go1.22", item.URL)
	assert.Equal(t, time.UTC, item.Time.Location())
	assert.Equal(t, published.Unix(), item.Unix())
	assert.Equal(t, 0, item.Time.Nanosecond())
	assert.True(t, item.HasLink())
}

func TestNewItem_Invalid(t *testing.T) {
	_, err := NewItem(Item{Title: "   ", Source: "HN"})
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = NewItem(Item{Title: "Title"})
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestNewItem_MissingTime(t *testing.T) {
	before := time.Now().Add(-time.Second)

	item, err := NewItem(Item{Title: "T", Source: "S"})
	require.NoError(t, err)

	assert.False(t, item.Time.Before(before))
	assert.False(t, item.HasLink())
}

func TestNewItem_CopiesCategories(t *testing.T) {
	categories := []string{"a", "b"}

	item, err := NewItem(Item{Title: "T", Source: "S", Categories: categories})
	require.NoError(t, err)

	categories[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, item.Categories)
}

func TestSnapshotCurrent(t *testing.T) {
	empty := Snapshot{Index: -1}
	assert.True(t, empty.Empty())
	_, ok := empty.Current()
	assert.False(t, ok)

	snapshot := Snapshot{Items: []Item{{Title: "a"}, {Title: "b"}}, Index: 1}
	item, ok := snapshot.Current()
	require.True(t, ok)
	assert.Equal(t, "b", item.Title)
}
