package search

import (
	"strings"
	"unicode"

	"github.com/hyperjump/marketscan/pkg/utils"
)

// Snippet returns up to maxRunes of content around the first query term it contains.
// Without a match it returns the leading text.
func Snippet(content, query string, maxRunes int) string {
	content = utils.CollapseWhitespace(content)
	runes := []rune(content)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return content
	}
	lower := []rune(strings.ToLower(content))
	start := 0
	for _, term := range strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if pos := runeIndex(lower, []rune(term)); pos >= 0 {
			start = pos - maxRunes/4
			break
		}
	}
	if start < 0 {
		start = 0
	}
	if start+maxRunes > len(runes) {
		start = len(runes) - maxRunes
	}
	out := string(runes[start : start+maxRunes])
	if start > 0 {
		out = "..." + out
	}
	if start+maxRunes < len(runes) {
		out += "..."
	}
	return out
}

func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
