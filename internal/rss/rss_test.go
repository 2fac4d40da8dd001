package rss

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/footnews/internal/httpclient"
	"github.com/deusflow/footnews/internal/news"
	"github.com/deusflow/footnews/internal/retry"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
  <title>Club news</title>
  <link>https://club.example</link>
  <item>
    <title>Oldest story</title>
    <link>https://club.example/oldest</link>
    <guid>guid-oldest</guid>
    <description>&lt;p&gt;First &lt;b&gt;paragraph&lt;/b&gt;&lt;/p&gt;</description>
    <pubDate>Mon, 06 Jan 2025 08:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Newest story</title>
    <link>/newest</link>
    <guid>guid-newest</guid>
    <description>Summary</description>
    <pubDate>Mon, 06 Jan 2025 12:00:00 GMT</pubDate>
    <media:content url="https://img.example/newest.jpg" medium="image"/>
  </item>
  <item>
    <title>Middle story</title>
    <link>https://club.example/middle</link>
    <description>Middle</description>
    <pubDate>Mon, 06 Jan 2025 10:00:00 GMT</pubDate>
    <enclosure url="https://img.example/middle.png" type="image/png" length="10"/>
  </item>
  <item>
    <title>Old story</title>
    <link>https://club.example/old</link>
    <pubDate>Sun, 05 Jan 2025 10:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func newTestSource(t *testing.T, handler http.HandlerFunc, max int) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{
		Name:     "club",
		URL:      srv.URL + "/rss",
		MaxItems: max,
		Retry:    retry.RetryConfig{MaxAttempts: 2, Delay: time.Millisecond},
	}, httpclient.NewRestyClient(2*time.Second, ""))
}

func TestFetch_TakesNewestAndMapsFields(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}, 3)

	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Newest story", items[0].Title)
	assert.Equal(t, "guid-newest", items[0].Identity)
	assert.Equal(t, "https://img.example/newest.jpg", items[0].Image)
	assert.Contains(t, items[0].Link, "/newest")
	assert.True(t, items[0].HasPublished())

	assert.Equal(t, "Middle story", items[1].Title)
	assert.Equal(t, "https://club.example/middle", items[1].Identity)
	assert.Equal(t, "https://img.example/middle.png", items[1].Image)

	assert.Equal(t, "Oldest story", items[2].Title)
	assert.Equal(t, "First paragraph", items[2].Summary)
	assert.Equal(t, "club", items[2].SourceName)
}

func TestFetch_ServerErrorIsFetchError(t *testing.T) {
	calls := 0
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}, 3)

	items, err := src.Fetch(context.Background())
	assert.Nil(t, items)

	var fetchErr *news.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "club", fetchErr.Source)
	assert.Equal(t, 2, calls)
}

func TestFetch_NotFoundIsNotRetried(t *testing.T) {
	calls := 0
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}, 3)

	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetch_InvalidFeed(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("definitely not xml"))
	}, 3)

	_, err := src.Fetch(context.Background())
	var fetchErr *news.FetchError
	assert.True(t, errors.As(err, &fetchErr))
}
