package mirror

import (
	"context"
	"fmt"

	"github.com/deusflow/footnews/internal/httpclient"
)

// HTTPSink POSTs the event as JSON to a webhook.
type HTTPSink struct {
	id      string
	url     string
	headers map[string]string
	client  httpclient.Client
}

func NewHTTP(id string, c HTTPConfig, client httpclient.Client) *HTTPSink {
	return &HTTPSink{id: id, url: c.URL, headers: c.Headers, client: client}
}

func (h *HTTPSink) Name() string { return h.id }

func (h *HTTPSink) Send(ctx context.Context, evt PostEvent) error {
	resp, err := h.client.PostJSON(ctx, h.url, evt, h.headers)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), httpclient.Snippet(resp.Body()))
	}
	return nil
}

func (h *HTTPSink) Close() error { return nil }
