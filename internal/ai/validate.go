package ai

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholder is substituted when translation generation keeps failing
// validation after the retry budget is spent.
const Placeholder = "暂无翻译"

// ValidTranslation reports whether a generated translation is usable:
// it must contain at least one CJK character, be at least two runes
// long, and not consist of punctuation alone.
func ValidTranslation(s string) bool {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < 2 {
		return false
	}

	hasCJK := false
	hasContent := false
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			hasCJK = true
		}
		if !unicode.IsPunct(r) && !unicode.IsSpace(r) && !unicode.IsSymbol(r) {
			hasContent = true
		}
	}
	return hasCJK && hasContent
}
