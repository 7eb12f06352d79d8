// Package matching provides text normalization, synonym folding and the
// substring-based coverage and similarity estimates used by scoring.
package matching

import (
	"strings"
	"unicode"
)

// Normalize lowercases s and keeps only [a-z0-9+#.-] runs separated by single
// spaces. Punctuation and symbols outside that set act as word separators,
// apostrophes and other letters are dropped. Normalize is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(s))
	pendingSpace := false

	for _, r := range strings.ToLower(s) {
		switch {
		case isTokenRune(r):
			if pendingSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			pendingSpace = false
			sb.WriteRune(r)
		case r == '\'' || r == '’':
			// "don't" -> "dont"
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			pendingSpace = true
		}
	}

	return sb.String()
}

func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '+', r == '#', r == '.', r == '-':
		return true
	}
	return false
}

// tokenize splits a responsibility statement into alphanumeric words.
func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		word := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, f)
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
