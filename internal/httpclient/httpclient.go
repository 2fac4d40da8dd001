// Package httpclient wraps resty with the timeout and headers every upstream call needs.
package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultUserAgent = "realbot/1.0"

// Client is the subset of HTTP operations the bot performs.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error)
	GetQuery(ctx context.Context, url string, query map[string]string) (*resty.Response, error)
	PostJSON(ctx context.Context, url string, body any, headers map[string]string) (*resty.Response, error)
}

type restyClient struct {
	client *resty.Client
}

// NewRestyClient builds a Client whose every request is bounded by timeout.
func NewRestyClient(timeout time.Duration, userAgent string) Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &restyClient{client: c}
}

func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return resp, nil
}

func (c *restyClient) GetQuery(ctx context.Context, url string, query map[string]string) (*resty.Response, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return resp, nil
}

func (c *restyClient) PostJSON(ctx context.Context, url string, body any, headers map[string]string) (*resty.Response, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	return resp, nil
}

// Snippet trims a response body for error messages.
func Snippet(body []byte) string {
	const maxLen = 512
	s := string(body)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
