package news

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText turns a feed/HTML fragment into readable text.
func PlainText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	if !strings.Contains(fragment, "<") {
		return collapseSpaces(html.UnescapeString(fragment))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpaces(html.UnescapeString(fragment))
	}
	doc.Find("script, style").Remove()
	return collapseSpaces(doc.Text())
}

// Truncate caps s at max runes, appending "..." when it cuts.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "..."
}

// Hashtags renders tags as "#a #b", adding the # where missing and dropping blanks.
func Hashtags(tags ...string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t != "" {
			out = append(out, "#"+t)
		}
	}
	return strings.Join(out, " ")
}
