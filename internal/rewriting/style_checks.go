package rewriting

import (
	"strings"
	"unicode"

	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	minBulletWords = 8
	maxBulletWords = 30
)

// Common strong action verbs for resume bullets (heuristic check)
var strongVerbs = map[string]bool{
	"achieved": true, "architected": true, "automated": true, "built": true,
	"created": true, "cut": true, "delivered": true, "designed": true,
	"developed": true, "drove": true, "engineered": true, "grew": true,
	"implemented": true, "improved": true, "increased": true, "launched": true,
	"led": true, "migrated": true, "optimized": true, "owned": true,
	"reduced": true, "ran": true, "scaled": true, "shipped": true,
	"spearheaded": true, "streamlined": true, "transformed": true, "wrote": true,
}

// ValidateStyle computes the advisory style checks for a bullet.
func ValidateStyle(text string, taboo []string) types.StyleChecks {
	trimmed := strings.TrimSpace(text)
	words := strings.Fields(trimmed)

	return types.StyleChecks{
		StrongVerb: checkStrongVerb(words),
		Quantified: checkQuantifiedImpact(trimmed),
		NoTaboo:    len(findForbiddenPhrases(trimmed, taboo)) == 0,
		WordCount:  len(words) >= minBulletWords && len(words) <= maxBulletWords,
	}
}

func checkStrongVerb(words []string) bool {
	if len(words) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimRight(words[0], ".,!?;:"))
	if strongVerbs[first] {
		return true
	}
	// past-tense verbs are almost always action verbs on a resume
	return strings.HasSuffix(first, "ed") && len(first) > 3
}

func checkQuantifiedImpact(text string) bool {
	return strings.ContainsFunc(text, unicode.IsDigit) || strings.Contains(text, "%")
}

// extractLeadingVerb returns the first word of a bullet without trailing punctuation.
func extractLeadingVerb(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimRight(fields[0], ",;:")
}
