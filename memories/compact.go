package memories

import (
	"strings"
	"unicode"
)

// compactContent bounds the storage footprint of a message without
// changing its meaning. Whitespace runs collapse to one space, newline
// runs to at most two, leading and trailing whitespace goes away.
func compactContent(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	prevWasSpace := false
	newlines := 0

	for _, r := range content {
		switch {
		case r == '\n':
			newlines++
			if newlines <= 2 {
				b.WriteRune('\n')
			}
			prevWasSpace = true
		case unicode.IsSpace(r):
			if !prevWasSpace {
				b.WriteRune(' ')
			}
			prevWasSpace = true
			newlines = 0
		default:
			b.WriteRune(r)
			prevWasSpace = false
			newlines = 0
		}
	}

	return strings.TrimSpace(b.String())
}
