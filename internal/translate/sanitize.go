package translate

import (
	"regexp"
	"strings"
)

var (
	parenNoteRe   = regexp.MustCompile(`(?is)\(\s*note:[^)]*\)`)
	bracketNoteRe = regexp.MustCompile(`(?is)\[\s*note:[^\]]*\]`)
	noteLineRe    = regexp.MustCompile(`(?i)^\s*(note|translator'?s note)\s*:`)
	spacesRe      = regexp.MustCompile(`[ \t]{2,}`)
)

// SanitizeAIText strips the "Note: ..." disclaimers LLMs like to append to translations.
func SanitizeAIText(s string) string {
	s = parenNoteRe.ReplaceAllString(s, "")
	s = bracketNoteRe.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if noteLineRe.MatchString(line) {
			continue
		}
		kept = append(kept, strings.TrimSpace(spacesRe.ReplaceAllString(line, " ")))
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
