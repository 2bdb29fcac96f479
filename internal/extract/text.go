package extract

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis marks text cut at the maximum content length.
const Ellipsis = "..."

// NormalizeWhitespace collapses every whitespace run to one space.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeLines trims each line, collapses inner spacing and drops blank
// lines, keeping paragraph breaks as single newlines.
func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = NormalizeWhitespace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Truncate keeps the first max runes of s and appends Ellipsis when s is
// longer than max.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + Ellipsis
}

// bound applies the content length window: too-short text is rejected,
// too-long text is truncated.
func bound(text string, minLen, maxLen int) (string, bool) {
	if utf8.RuneCountInString(text) < minLen {
		return "", false
	}
	return Truncate(text, maxLen), true
}
