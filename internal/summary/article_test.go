package summary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSummarizer struct {
	got string
	err error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	f.got = text
	if f.err != nil {
		return "", f.err
	}
	return "summary", nil
}

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Understanding Go schedulers</title></head>
<body>
  <nav><a href="/">Home</a> <a href="/about">About</a></nav>
  <article>
    <h1>Understanding Go schedulers</h1>
    <p>The Go runtime multiplexes goroutines onto operating system threads using a work stealing scheduler.
    Each processor keeps a local run queue, and idle processors steal work from busy ones to keep every core occupied.</p>
    <p>When a goroutine blocks in a system call, the runtime hands its processor to another thread so that the remaining
    goroutines keep running. This design keeps latency low even for programs that spawn hundreds of thousands of goroutines.</p>
    <p>Preemption was cooperative for a long time, but since Go 1.14 the runtime can interrupt long running loops
    asynchronously by sending signals, which makes tail latencies far more predictable in practice.</p>
  </article>
  <footer>Copyright</footer>
</body>
</html>`

func TestArticleSummarizer_UsesExcerpt(t *testing.T) {
	fake := &fakeSummarizer{}
	s := NewArticleSummarizer(fake, time.Second)

	got, err := s.Summarize(context.Background(), model.Item{
		Title:   "Short",
		URL:     "http://127.0.0.1:1/never-called",
		Excerpt: "Already have some text",
	})
	require.NoError(t, err)
	assert.Equal(t, "summary", got)
	assert.Equal(t, "Already have some text", fake.got)
}

func TestArticleSummarizer_FetchesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	fake := &fakeSummarizer{}
	s := NewArticleSummarizer(fake, time.Second)

	got, err := s.Summarize(context.Background(), model.Item{Title: "Schedulers", URL: srv.URL + "/post"})
	require.NoError(t, err)
	assert.Equal(t, "summary", got)
	assert.Contains(t, fake.got, "work stealing scheduler")
	assert.NotContains(t, fake.got, "\n\n\n")
}

func TestArticleSummarizer_NoText(t *testing.T) {
	fake := &fakeSummarizer{}
	s := NewArticleSummarizer(fake, time.Second)

	_, err := s.Summarize(context.Background(), model.Item{Title: "No link"})
	assert.ErrorIs(t, err, ErrNoText)
	assert.Empty(t, fake.got)
}

func TestArticleSummarizer_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	s := NewArticleSummarizer(&fakeSummarizer{}, time.Second)

	_, err := s.Summarize(context.Background(), model.Item{Title: "Gone", URL: srv.URL})
	assert.Error(t, err)
}

func TestArticleSummarizer_SummarizerError(t *testing.T) {
	boom := errors.New("rate limited")
	s := NewArticleSummarizer(&fakeSummarizer{err: boom}, time.Second)

	_, err := s.Summarize(context.Background(), model.Item{Title: "T", Excerpt: "text"})
	assert.ErrorIs(t, err, boom)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a\n\nb\nc", cleanText("\n a\n\nb\n\n\n\n\nc \n"))
}

func TestTrimToSentence(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{raw: "", expected: ""},
		{raw: "Complete sentence.", expected: "Complete sentence."},
		{raw: "First one. Second is cut", expected: "First one."},
		{raw: "no period at all", expected: "no period at all"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, trimToSentence(tt.raw))
		})
	}
}

func TestOpenAISummarizer_Disabled(t *testing.T) {
	log, _ := test.NewNullLogger()
	s := NewOpenAISummarizer("", "", log)
	assert.False(t, s.Enabled())

	got, err := s.Summarize(context.Background(), strings.Repeat("text ", 10))
	require.NoError(t, err)
	assert.Empty(t, got)
}
