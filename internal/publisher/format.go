package publisher

import (
	"html"
	"strings"

	"github.com/deusflow/footnews/internal/news"
)

// Post is the content of one channel message before HTML rendering.
type Post struct {
	Marker   string
	Title    string
	Summary  string
	Link     string
	Source   string
	Hashtags []string
}

// Compose renders p as Telegram HTML. Blank sections are left out.
func Compose(p Post) string {
	var b strings.Builder

	b.WriteString(p.Marker)
	b.WriteString(" <b>")
	b.WriteString(html.EscapeString(p.Title))
	b.WriteString("</b>")

	if s := strings.TrimSpace(p.Summary); s != "" {
		b.WriteString("\n\n")
		b.WriteString(html.EscapeString(s))
	}

	if p.Link != "" {
		source := p.Source
		if source == "" {
			source = "Source"
		}
		b.WriteString("\n\n🔗 <a href=\"")
		b.WriteString(html.EscapeString(p.Link))
		b.WriteString("\">")
		b.WriteString(html.EscapeString(source))
		b.WriteString("</a>")
	}

	if tags := news.Hashtags(p.Hashtags...); tags != "" {
		b.WriteString("\n\n")
		b.WriteString(tags)
	}

	return b.String()
}
