// Package mirror copies every delivered channel post to external sinks (queues, topics, webhooks).
package mirror

import (
	"context"
	"errors"
	"time"

	"github.com/deusflow/footnews/internal/logger"
)

const (
	KindNews     = "news"
	KindLive     = "live"
	KindGoal     = "goal"
	KindFixtures = "fixtures"
)

// PostEvent is the JSON document sent to every sink.
type PostEvent struct {
	Identity    string    `json:"identity,omitempty"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title,omitempty"`
	Link        string    `json:"link,omitempty"`
	Source      string    `json:"source,omitempty"`
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"published_at"`
}

// Sink delivers events to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, evt PostEvent) error
	Close() error
}

// Fanout sends each event to all sinks. Sink failures are logged and swallowed.
type Fanout struct {
	sinks   []Sink
	timeout time.Duration
}

func NewFanout(timeout time.Duration, sinks ...Sink) *Fanout {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fanout{sinks: sinks, timeout: timeout}
}

// Emit is best effort and never returns an error.
func (f *Fanout) Emit(ctx context.Context, evt PostEvent) {
	if f == nil || len(f.sinks) == 0 {
		return
	}
	if evt.PublishedAt.IsZero() {
		evt.PublishedAt = time.Now().UTC()
	}

	for _, s := range f.sinks {
		sendCtx, cancel := context.WithTimeout(ctx, f.timeout)
		err := s.Send(sendCtx, evt)
		cancel()
		if err != nil {
			logger.Warn("mirror sink failed", "sink", s.Name(), "kind", evt.Kind, "identity", evt.Identity, "error", err)
			continue
		}
		logger.Debug("mirrored post", "sink", s.Name(), "kind", evt.Kind, "identity", evt.Identity)
	}
}

func (f *Fanout) Len() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
