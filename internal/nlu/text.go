// internal/nlu/text.go
package nlu

import (
	"strings"
	"unicode"
)

// normalizeText lowercases the input and replaces punctuation with spaces.
// Hyphens and plus signs survive so age-group tokens like "18-25" and "56+"
// stay intact.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == '+':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func fields(s string) []string {
	return strings.Fields(normalizeText(s))
}

// containsPhrase reports whether phrase occurs in text with word boundaries
// on both sides. Both arguments must already be normalized.
func containsPhrase(text, phrase string) bool {
	_, ok := phraseIndex(text, phrase, 0)
	return ok
}

// phraseIndex returns the byte offset of the first boundary-delimited
// occurrence of phrase in text at or after start.
func phraseIndex(text, phrase string, start int) (int, bool) {
	if phrase == "" || start > len(text) {
		return 0, false
	}
	for {
		i := strings.Index(text[start:], phrase)
		if i < 0 {
			return 0, false
		}
		i += start
		if boundaryBefore(text, i) && boundaryAfter(text, i+len(phrase)) {
			return i, true
		}
		start = i + 1
	}
}

func boundaryBefore(text string, i int) bool {
	return i == 0 || !isWordByte(text[i-1])
}

func boundaryAfter(text string, i int) bool {
	return i >= len(text) || !isWordByte(text[i])
}

// isWordByte treats hyphen and plus as word characters so "18-25" never
// matches a bare "18".
func isWordByte(c byte) bool {
	return c == '-' || c == '+' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// countHits counts the distinct keywords from the list present in text.
func countHits(text string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if containsPhrase(text, kw) {
			hits++
		}
	}
	return hits
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

func isRuleKeyword(token string) bool {
	_, ok := keywordLexicon[token]
	return ok
}
