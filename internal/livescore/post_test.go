package livescore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLivePost(t *testing.T) {
	m := Match{Home: "Real Madrid", Away: "Atlético", Competition: "La Liga", Score: "2-1"}
	got := LivePost(m, []string{"RealMadrid", "Live"})

	assert.Equal(t, "🏆 La Liga\n⚽️ Real Madrid 🆚 Atlético\n📊 2-1\n\n#RealMadrid #Live", got)
}

func TestGoalPost(t *testing.T) {
	tags := make([]string, 1, 4)
	tags[0] = "RealMadrid"
	got := GoalPost(Match{Home: "Real Madrid", Away: "Betis", Score: "1-0"}, tags)

	assert.Contains(t, got, "<b>GOAL!</b>")
	assert.Contains(t, got, "Real Madrid 1-0 Betis")
	assert.Contains(t, got, "#RealMadrid #GOAL")
	assert.Len(t, tags, 1)
}

func TestFixturesPost_EscapesNames(t *testing.T) {
	got := FixturesPost([]Fixture{{
		Home: "Brighton & Hove Albion", Away: "Real Madrid", Competition: "Friendly",
		Kickoff: time.Date(2025, 7, 20, 18, 30, 0, 0, time.UTC),
	}}, nil)

	assert.Contains(t, got, "Brighton &amp; Hove Albion")
	assert.Contains(t, got, "20.07.2025 18:30 UTC")
}
