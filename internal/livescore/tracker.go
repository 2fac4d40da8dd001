package livescore

import (
	"context"

	"github.com/deusflow/footnews/internal/logger"
)

// MatchSource is what the tracker polls; *Client implements it.
type MatchSource interface {
	Live(ctx context.Context) (*Match, error)
}

// State is the tracked live match. LastScore is empty on the first observation.
type State struct {
	Match
	LastScore string
}

// Tracker owns the single live-match slot. It is not safe for concurrent use.
type Tracker struct {
	source MatchSource
	state  *State
}

func NewTracker(source MatchSource) *Tracker {
	return &Tracker{source: source}
}

// Poll asks the source for the live match and applies Observe.
// On a source error the state is left untouched and no goal is reported.
func (t *Tracker) Poll(ctx context.Context) (*Match, bool, error) {
	m, err := t.source.Live(ctx)
	if err != nil {
		return nil, false, err
	}
	return m, t.Observe(m), nil
}

// Observe feeds one observation into the state machine and reports whether a goal happened.
// A nil match means no live match and clears the state; a different pairing starts over.
func (t *Tracker) Observe(m *Match) bool {
	if m == nil {
		if t.state != nil {
			logger.Debug("live match finished", "home", t.state.Home, "away", t.state.Away, "score", t.state.Score)
		}
		t.state = nil
		return false
	}

	if t.state == nil || t.state.Home != m.Home || t.state.Away != m.Away {
		t.state = &State{Match: *m}
		return false
	}

	goal := t.state.Score != m.Score
	t.state = &State{Match: *m, LastScore: t.state.Score}
	return goal
}

// Current returns a copy of the tracked state, or nil when no match is tracked.
func (t *Tracker) Current() *State {
	if t.state == nil {
		return nil
	}
	s := *t.state
	return &s
}
