package livescore

import (
	"fmt"
	"html"
	"strings"

	"github.com/deusflow/footnews/internal/news"
)

// LivePost is the periodic score update for a live match.
func LivePost(m Match, hashtags []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 %s\n", html.EscapeString(m.Competition))
	fmt.Fprintf(&b, "⚽️ %s 🆚 %s\n", html.EscapeString(m.Home), html.EscapeString(m.Away))
	fmt.Fprintf(&b, "📊 %s", html.EscapeString(m.Score))
	if tags := news.Hashtags(hashtags...); tags != "" {
		b.WriteString("\n\n" + tags)
	}
	return b.String()
}

// GoalPost announces a score change.
func GoalPost(m Match, hashtags []string) string {
	text := fmt.Sprintf("⚽️ <b>GOAL!</b> %s %s %s 🔥🔥",
		html.EscapeString(m.Home), html.EscapeString(m.Score), html.EscapeString(m.Away))
	if tags := news.Hashtags(append(hashtags[:len(hashtags):len(hashtags)], "GOAL")...); tags != "" {
		text += " " + tags
	}
	return text
}

// FixturesPost lists upcoming matches with kickoff times in UTC.
func FixturesPost(fixtures []Fixture, hashtags []string) string {
	var b strings.Builder
	b.WriteString("📅 <b>Upcoming matches</b>\n")
	for _, f := range fixtures {
		fmt.Fprintf(&b, "\n🏆 %s\n⚽️ %s 🆚 %s\n🕒 %s UTC\n",
			html.EscapeString(f.Competition),
			html.EscapeString(f.Home),
			html.EscapeString(f.Away),
			f.Kickoff.UTC().Format("02.01.2006 15:04"))
	}
	if tags := news.Hashtags(hashtags...); tags != "" {
		b.WriteString("\n" + tags)
	}
	return b.String()
}
