// Package livescore follows a team's live match on football-data.org and detects goals.
package livescore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/footnews/internal/httpclient"
)

const (
	DefaultBaseURL = "https://api.football-data.org/v4"
	DefaultTeamID  = 86
)

// Match is a live match as the tracker sees it.
type Match struct {
	Home        string
	Away        string
	Competition string
	Score       string // "{home}-{away}"
}

// Fixture is an upcoming scheduled match.
type Fixture struct {
	Home        string
	Away        string
	Competition string
	Kickoff     time.Time
}

type matchesResponse struct {
	Matches []apiMatch `json:"matches"`
}

type apiMatch struct {
	UTCDate  time.Time `json:"utcDate"`
	Status   string    `json:"status"`
	HomeTeam struct {
		Name string `json:"name"`
	} `json:"homeTeam"`
	AwayTeam struct {
		Name string `json:"name"`
	} `json:"awayTeam"`
	Competition struct {
		Name string `json:"name"`
	} `json:"competition"`
	Score struct {
		FullTime struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"fullTime"`
	} `json:"score"`
}

// Client reads one team's matches from the football-data.org v4 API.
type Client struct {
	http    httpclient.Client
	baseURL string
	apiKey  string
	teamID  int
}

func NewClient(client httpclient.Client, baseURL, apiKey string, teamID int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if teamID <= 0 {
		teamID = DefaultTeamID
	}
	return &Client{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		teamID:  teamID,
	}
}

// Live returns the team's current live match, or nil when it is not playing.
func (c *Client) Live(ctx context.Context) (*Match, error) {
	matches, err := c.matches(ctx, "LIVE")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	m := matches[0]
	return &Match{
		Home:        m.HomeTeam.Name,
		Away:        m.AwayTeam.Name,
		Competition: m.Competition.Name,
		Score:       fmt.Sprintf("%d-%d", orZero(m.Score.FullTime.Home), orZero(m.Score.FullTime.Away)),
	}, nil
}

// Upcoming returns at most n scheduled matches in API order.
func (c *Client) Upcoming(ctx context.Context, n int) ([]Fixture, error) {
	matches, err := c.matches(ctx, "SCHEDULED")
	if err != nil {
		return nil, err
	}
	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}

	out := make([]Fixture, 0, len(matches))
	for _, m := range matches {
		out = append(out, Fixture{
			Home:        m.HomeTeam.Name,
			Away:        m.AwayTeam.Name,
			Competition: m.Competition.Name,
			Kickoff:     m.UTCDate,
		})
	}
	return out, nil
}

func (c *Client) matches(ctx context.Context, status string) ([]apiMatch, error) {
	url := fmt.Sprintf("%s/teams/%d/matches?status=%s", c.baseURL, c.teamID, status)

	resp, err := c.http.Get(ctx, url, map[string]string{"X-Auth-Token": c.apiKey})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("football API returned status %d: %s", resp.StatusCode(), httpclient.Snippet(resp.Body()))
	}

	var data matchesResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	return data.Matches, nil
}

func orZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
