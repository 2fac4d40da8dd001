// Package news holds the normalized news item shared by every pipeline stage.
package news

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Item is one candidate post produced by a source adapter.
// Build it with NewItem; the pipeline never rewrites its fields.
type Item struct {
	Identity   string
	Title      string
	Summary    string
	Link       string
	Image      string // empty when the source had no image
	SourceName string
	Published  time.Time // zero when the source had no usable timestamp
}

// HasImage reports whether the item carries an image reference.
func (it Item) HasImage() bool { return it.Image != "" }

// HasPublished reports whether the item carries a publish timestamp.
func (it Item) HasPublished() bool { return !it.Published.IsZero() }

// NewItem validates raw adapter output and picks the dedup identity:
// feed guid first, then link, then title.
func NewItem(guid, title, summary, link, image, source string, published time.Time) (Item, error) {
	title = collapseSpaces(title)
	summary = strings.TrimSpace(summary)
	link = strings.TrimSpace(link)

	if title == "" && link == "" {
		return Item{}, errors.New("item has neither title nor link")
	}

	identity := firstNonEmpty(guid, link, title)
	if title == "" {
		title = link
	}

	return Item{
		Identity:   identity,
		Title:      title,
		Summary:    summary,
		Link:       link,
		Image:      strings.TrimSpace(image),
		SourceName: source,
		Published:  published,
	}, nil
}

// SortOldestFirst orders items chronologically in place.
// Items without a timestamp go first so they are never starved.
func SortOldestFirst(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case !a.HasPublished() && !b.HasPublished():
			return false
		case !a.HasPublished():
			return true
		case !b.HasPublished():
			return false
		}
		return a.Published.Before(b.Published)
	})
}

// Category is a decorative post category picked from title keywords.
type Category string

const (
	CategoryGoal     Category = "goal"
	CategoryInjury   Category = "injury"
	CategoryTransfer Category = "transfer"
	CategoryMatch    Category = "match"
	CategoryDefault  Category = "default"
)

type categoryRule struct {
	category Category
	marker   string
	phrases  []string       // matched as substrings
	words    *regexp.Regexp // short keywords, matched as whole words
}

// newRule splits keywords: phrases and keywords longer than 3 runes match as
// substrings, shorter ones as whole words so "gol" does not hit "golf".
func newRule(c Category, marker string, keywords ...string) categoryRule {
	r := categoryRule{category: c, marker: marker}
	var short []string
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		switch {
		case k == "":
		case strings.Contains(k, " ") || utf8.RuneCountInString(k) > 3:
			r.phrases = append(r.phrases, k)
		default:
			short = append(short, regexp.QuoteMeta(k))
		}
	}
	if len(short) > 0 {
		r.words = regexp.MustCompile(`(^|[^\p{L}\p{N}])(` + strings.Join(short, "|") + `)($|[^\p{L}\p{N}])`)
	}
	return r
}

// Order matters: the first matching rule wins.
// Uzbek inflects by suffix, so the goal rule lists the common forms of "gol".
var categoryRules = []categoryRule{
	newRule(CategoryGoal, "⚽️", "goal", "gol", "goli", "golni", "gollar", "golga", "goldan"),
	newRule(CategoryInjury, "🚑", "injury", "injured", "jarohat"),
	newRule(CategoryTransfer, "💰", "transfer", "signing", "sotib", "sotildi"),
	newRule(CategoryMatch, "🏟", "match", "game", "o‘yin", "o'yin"),
}

const defaultMarker = "📰"

// Categorize returns the first category whose keywords appear in any of the texts.
func Categorize(texts ...string) Category {
	for _, rule := range categoryRules {
		for _, t := range texts {
			if rule.matches(t) {
				return rule.category
			}
		}
	}
	return CategoryDefault
}

// Marker returns the emoji used in front of the post title.
func (c Category) Marker() string {
	for _, rule := range categoryRules {
		if rule.category == c {
			return rule.marker
		}
	}
	return defaultMarker
}

func (r categoryRule) matches(text string) bool {
	text = strings.ToLower(text)
	for _, k := range r.phrases {
		if strings.Contains(text, k) {
			return true
		}
	}
	return r.words != nil && r.words.MatchString(text)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
