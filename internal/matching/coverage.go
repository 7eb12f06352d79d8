package matching

import "strings"

const (
	// DefaultCalibrationOffset is added to raw token overlap, which under-estimates closeness
	DefaultCalibrationOffset = 0.2
	// DefaultNeutralSimilarity is reported when there are no responsibilities to compare
	DefaultNeutralSimilarity = 0.8
)

// CoverageResult reports which targets were found in a document
type CoverageResult struct {
	MatchedCount int      `json:"matchedCount"`
	TargetCount  int      `json:"targetCount"`
	Ratio        float64  `json:"ratio"`
	Matched      []string `json:"matched"`
	Missing      []string `json:"missing"`
	// Canonical holds the canonical form of each matched target
	Canonical []string `json:"-"`
}

// MatcherOptions tunes the similarity estimate
type MatcherOptions struct {
	CalibrationOffset float64
	NeutralSimilarity float64
}

// DefaultMatcherOptions returns the standard calibration.
func DefaultMatcherOptions() MatcherOptions {
	return MatcherOptions{
		CalibrationOffset: DefaultCalibrationOffset,
		NeutralSimilarity: DefaultNeutralSimilarity,
	}
}

// Matcher computes coverage and similarity against canonical document text
type Matcher struct {
	vocab *Vocabulary
	opts  MatcherOptions
}

// NewMatcher creates a Matcher over the given vocabulary. A nil vocabulary uses the defaults.
func NewMatcher(vocab *Vocabulary, opts MatcherOptions) *Matcher {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Matcher{vocab: vocab, opts: opts}
}

// Vocabulary returns the tables the matcher folds with.
func (m *Matcher) Vocabulary() *Vocabulary {
	return m.vocab
}

// Coverage tests each distinct canonical target for literal containment in blob,
// which must already be canonical (see Vocabulary.Canonical). Matching is
// substring based, so "java" also matches inside "javascript".
func (m *Matcher) Coverage(targets []string, blob string) CoverageResult {
	result := CoverageResult{
		Matched:   []string{},
		Missing:   []string{},
		Canonical: []string{},
	}

	seen := make(map[string]bool, len(targets))
	for _, target := range targets {
		canonical := m.vocab.Canonical(target)
		if canonical == "" || seen[canonical] {
			continue
		}
		seen[canonical] = true
		result.TargetCount++

		if strings.Contains(blob, canonical) {
			result.MatchedCount++
			result.Matched = append(result.Matched, strings.TrimSpace(target))
			result.Canonical = append(result.Canonical, canonical)
		} else {
			result.Missing = append(result.Missing, strings.TrimSpace(target))
		}
	}

	if result.TargetCount == 0 {
		result.Ratio = 1
		return result
	}
	result.Ratio = float64(result.MatchedCount) / float64(result.TargetCount)
	return result
}
