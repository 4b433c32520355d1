package citation

import (
	"strings"
	"unicode"
)

// MaxExcerptLength bounds excerpts, in characters.
const MaxExcerptLength = 300

const ellipsis = "…"

// Excerpt returns at most max characters of text. A sentence end in the
// second half of the window is preferred as the cut point; otherwise the cut
// falls on a word boundary and is marked with an ellipsis.
func Excerpt(text string, max int) string {
	if max <= 0 {
		max = MaxExcerptLength
	}
	clean := strings.Join(strings.Fields(text), " ")
	runes := []rune(clean)
	if len(runes) <= max {
		return clean
	}

	window := runes[:max]
	for i := len(window) - 1; i >= max/2; i-- {
		if isSentenceEnd(window[i]) && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			return string(window[:i+1])
		}
	}

	window = runes[:max-1]
	cut := len(window)
	for i := len(window) - 1; i >= max/2; i-- {
		if unicode.IsSpace(window[i]) {
			cut = i
			break
		}
	}
	return strings.TrimSpace(string(window[:cut])) + ellipsis
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == ';'
}
