package rewriting

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultTabooPhrases are weak or filler phrases that dilute a bullet
var DefaultTabooPhrases = []string{
	"responsible for",
	"helped with",
	"worked on",
	"duties included",
	"various",
	"synergy",
	"go-getter",
	"team player",
}

// findForbiddenPhrases returns the taboo phrases found in text, case-insensitively,
// each reported once in its original spelling. It returns nil when none match.
func findForbiddenPhrases(text string, taboo []string) []string {
	if len(taboo) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	var found []string
	seen := make(map[string]bool)
	for _, phrase := range taboo {
		normalized := strings.ToLower(strings.TrimSpace(phrase))
		if normalized == "" || seen[normalized] {
			continue
		}
		if strings.Contains(lower, normalized) {
			seen[normalized] = true
			found = append(found, phrase)
		}
	}
	return found
}

// CheckForbiddenPhrases maps bullet IDs to the taboo phrases their final text contains.
// Bullets without matches are omitted.
func CheckForbiddenPhrases(bullets []types.VerifiedBullet, taboo []string) map[string][]string {
	result := make(map[string][]string)
	for _, b := range bullets {
		if found := findForbiddenPhrases(b.Text, taboo); len(found) > 0 {
			result[b.ID] = found
		}
	}
	return result
}
