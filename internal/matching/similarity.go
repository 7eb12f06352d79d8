package matching

import "strings"

// Similarity estimates how closely the responsibilities are reflected in blob
// by token containment, plus the calibration offset, capped at 1. An empty
// responsibility list (or one made only of stopwords) yields the neutral value.
func (m *Matcher) Similarity(responsibilities []string, blob string) float64 {
	tokens := m.responsibilityTokens(responsibilities)
	if len(tokens) == 0 {
		return m.opts.NeutralSimilarity
	}

	matched := 0
	for tok := range tokens {
		if strings.Contains(blob, tok) {
			matched++
		}
	}

	return min(1, float64(matched)/float64(len(tokens))+m.opts.CalibrationOffset)
}

func (m *Matcher) responsibilityTokens(responsibilities []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range responsibilities {
		for _, word := range tokenize(line) {
			if m.vocab.IsStopword(word) {
				continue
			}
			set[m.vocab.FoldSynonym(word)] = struct{}{}
		}
	}
	return set
}
