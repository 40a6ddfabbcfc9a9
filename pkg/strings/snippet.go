package strings

import (
	"strings"
)

// DefaultSnippetMaxLen bounds response bodies quoted in error messages.
const DefaultSnippetMaxLen = 200

// MinSnippetLen is the smallest maxLen Snippet honours; shorter values would
// leave no room for content plus "...".
const MinSnippetLen = 4

// Snippet renders body as a single line of at most maxLen runes. Runs of
// whitespace collapse to one space and an over-long result ends in "...".
// Gateway error pages are often multi-line HTML, which keeps log lines and
// error strings readable.
func Snippet(body []byte, maxLen int) string {
	if maxLen < MinSnippetLen {
		maxLen = MinSnippetLen
	}

	s := strings.Join(strings.Fields(string(body)), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
