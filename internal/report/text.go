package report

import (
	"strings"
	"unicode/utf8"
)

// CountChars returns the character count as runes (not bytes).
// This correctly handles multi-byte UTF-8 characters.
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// Truncate shortens text to at most max runes, appending "..." when content
// was dropped. The ellipsis counts against the budget so the result never
// exceeds max runes. Returns text unchanged when it already fits.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// CollapseSpace trims the string and collapses internal whitespace runs to
// single spaces, so multi-line messages render as one summary line.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
