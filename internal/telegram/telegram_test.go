package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/footnews/internal/httpclient"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(httpclient.NewRestyClient(5*time.Second, ""), "123:SECRET", "@channel").WithBaseURL(srv.URL)
	return c, srv
}

func TestSendText(t *testing.T) {
	var got map[string]interface{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:SECRET/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	require.NoError(t, c.SendText(context.Background(), "⚽️ <b>GOAL!</b>"))
	assert.Equal(t, "@channel", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "⚽️ <b>GOAL!</b>", got["text"])
}

func TestSendPhoto(t *testing.T) {
	var got map[string]interface{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:SECRET/sendPhoto", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	require.NoError(t, c.SendPhoto(context.Background(), "https://img.example/p.jpg", "caption"))
	assert.Equal(t, "https://img.example/p.jpg", got["photo"])
	assert.Equal(t, "caption", got["caption"])
}

func TestSendPhoto_APIError(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: wrong file identifier"}`))
	})

	err := c.SendPhoto(context.Background(), "not-an-image", "caption")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong file identifier")
	assert.Equal(t, 1, calls)
}

func TestSendPhoto_CaptionTooLong(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	err := c.SendPhoto(context.Background(), "https://img.example/p.jpg", strings.Repeat("я", MaxCaption+1))
	assert.ErrorIs(t, err, ErrCaptionTooLong)
}

func TestSendText_TooLongIsRefused(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	text := "<b>" + strings.Repeat("x", MaxText+1) + "</b>"
	assert.ErrorIs(t, c.SendText(context.Background(), text), ErrTextTooLong)
}

func TestSendPhoto_CaptionLimitIgnoresMarkup(t *testing.T) {
	var got map[string]interface{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	body := strings.Repeat("a", MaxCaption-20)
	caption := `⚽️ <b>` + body + `</b> <a href="https://www.realmadrid.com/en/news/some-long-article-slug">Real</a>`
	require.Greater(t, len([]rune(caption)), MaxCaption)

	require.NoError(t, c.SendPhoto(context.Background(), "https://img.example/p.jpg", caption))
	assert.Equal(t, caption, got["caption"])
}

func TestVisibleLen(t *testing.T) {
	assert.Equal(t, 5, VisibleLen("hello"))
	assert.Equal(t, 9, VisibleLen("<b>GOAL!</b> &amp; 1"))
	assert.Equal(t, 4, VisibleLen(`<a href="https://example.com/x">Real</a>`))
	assert.Equal(t, 4, VisibleLen("a\n\nb"))
}

func TestTransportErrorHidesToken(t *testing.T) {
	c := New(httpclient.NewRestyClient(time.Second, ""), "123:SECRET", "@channel").WithBaseURL("http://127.0.0.1:1")

	err := c.SendText(context.Background(), "hello")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET")
}
