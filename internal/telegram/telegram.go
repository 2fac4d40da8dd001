// Package telegram sends posts to a channel through the Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/footnews/internal/httpclient"
	"github.com/deusflow/footnews/internal/logger"
)

const (
	DefaultBaseURL = "https://api.telegram.org"

	// Bot API limits, counted on the text left after HTML entity parsing.
	MaxCaption = 1024
	MaxText    = 4096
)

var (
	ErrCaptionTooLong = errors.New("caption exceeds photo caption limit")
	ErrTextTooLong    = errors.New("text exceeds message limit")
)

// Client is a single-attempt Bot API sender. Retrying is left to the caller.
type Client struct {
	http    httpclient.Client
	token   string
	chatID  string
	baseURL string
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

func New(client httpclient.Client, token, chatID string) *Client {
	return &Client{http: client, token: token, chatID: chatID, baseURL: DefaultBaseURL}
}

// WithBaseURL points the client at another Bot API host.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// SendText posts an HTML message to the channel. Text over the limit is refused, not cut,
// since cutting HTML leaves tags unclosed.
func (c *Client) SendText(ctx context.Context, text string) error {
	if VisibleLen(text) > MaxText {
		return ErrTextTooLong
	}

	payload := map[string]interface{}{
		"chat_id":                  c.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": false,
	}
	if err := c.call(ctx, "sendMessage", payload); err != nil {
		return err
	}

	logger.Debug("message sent to Telegram", "chat_id", c.chatID)
	return nil
}

// SendPhoto posts photo (a URL) with an HTML caption.
func (c *Client) SendPhoto(ctx context.Context, photo, caption string) error {
	if VisibleLen(caption) > MaxCaption {
		return ErrCaptionTooLong
	}

	payload := map[string]interface{}{
		"chat_id":    c.chatID,
		"photo":      photo,
		"caption":    caption,
		"parse_mode": "HTML",
	}
	if err := c.call(ctx, "sendPhoto", payload); err != nil {
		return err
	}

	logger.Debug("photo sent to Telegram", "chat_id", c.chatID)
	return nil
}

func (c *Client) call(ctx context.Context, method string, payload map[string]interface{}) error {
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	resp, err := c.http.PostJSON(ctx, url, payload, nil)
	if err != nil {
		return c.redact(fmt.Errorf("error HTTP request: %w", err))
	}

	var body apiResponse
	_ = json.Unmarshal(resp.Body(), &body)

	if !resp.IsSuccess() || !body.OK {
		if body.Description != "" {
			return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode(), body.Description)
		}
		return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode(), httpclient.Snippet(resp.Body()))
	}
	return nil
}

// VisibleLen counts the runes Telegram sees once tags are removed and entities decoded.
func VisibleLen(text string) int {
	if !strings.ContainsAny(text, "<&") {
		return utf8.RuneCountInString(text)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return utf8.RuneCountInString(text)
	}
	return utf8.RuneCountInString(doc.Text())
}

// redact strips the bot token from transport errors, which embed the request URL.
func (c *Client) redact(err error) error {
	if c.token == "" || !strings.Contains(err.Error(), c.token) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), c.token, "<token>"))
}
