package textutil

import (
	"regexp"
	"strings"
)

var (
	styleOverridePattern = regexp.MustCompile(`\{[^}]*\}`)
	lineBreakPattern     = regexp.MustCompile(`\\[nN]`)
	markupTagPattern     = regexp.MustCompile(`<[^>]+>`)
)

// Normalize strips ASS override blocks, \N line breaks and HTML-like tags
// from a raw cue and collapses whitespace. Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	out := normalizeOnce(raw)
	// tag removal can join characters into a new escape such as "\<i>N"
	for {
		next := normalizeOnce(out)
		if next == out {
			return out
		}
		out = next
	}
}

func normalizeOnce(s string) string {
	s = styleOverridePattern.ReplaceAllString(s, "")
	s = lineBreakPattern.ReplaceAllString(s, " ")
	s = markupTagPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
