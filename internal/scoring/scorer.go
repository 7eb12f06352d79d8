// Package scoring computes ATS-style match scores of a resume against a job description.
package scoring

import (
	"fmt"
	"math"

	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// DefaultCeiling is the highest score ever reported
	DefaultCeiling = 95
	// DefaultBump is added to the after score when coverage improved but rounding hid it
	DefaultBump = 5
)

// Variant names a weighting scheme
type Variant string

const (
	// VariantSemantic weighs required/preferred coverage and responsibility similarity
	VariantSemantic Variant = "semantic"
	// VariantKeyword replaces part of the similarity weight with keyword coverage
	VariantKeyword Variant = "keyword"
)

// Weights are applied to the sub-scores before the format penalty. They sum to 1.
type Weights struct {
	Required  float64
	Preferred float64
	Semantic  float64
	Keyword   float64
}

// WeightsFor returns the weights of a named variant.
func WeightsFor(v Variant) (Weights, error) {
	switch v {
	case VariantSemantic, "":
		return Weights{Required: 0.45, Preferred: 0.25, Semantic: 0.30}, nil
	case VariantKeyword:
		return Weights{Required: 0.40, Preferred: 0.15, Semantic: 0.20, Keyword: 0.25}, nil
	default:
		return Weights{}, fmt.Errorf("unknown scoring variant %q", v)
	}
}

// Options configures a Scorer
type Options struct {
	Weights Weights
	Ceiling int
	Bump    int
	Matcher matching.MatcherOptions
}

// DefaultOptions returns the semantic variant with the standard ceiling and bump.
func DefaultOptions() Options {
	w, _ := WeightsFor(VariantSemantic)
	return Options{
		Weights: w,
		Ceiling: DefaultCeiling,
		Bump:    DefaultBump,
		Matcher: matching.DefaultMatcherOptions(),
	}
}

// Scorer scores resumes against job descriptions. It holds no mutable state
// and is safe for concurrent use.
type Scorer struct {
	vocab   *matching.Vocabulary
	matcher *matching.Matcher
	opts    Options
}

// NewScorer creates a Scorer. A nil vocabulary uses the built-in tables.
func NewScorer(vocab *matching.Vocabulary, opts Options) *Scorer {
	if vocab == nil {
		vocab = matching.DefaultVocabulary()
	}
	if opts.Ceiling <= 0 || opts.Ceiling > 100 {
		opts.Ceiling = DefaultCeiling
	}
	if opts.Bump <= 0 {
		opts.Bump = DefaultBump
	}
	if opts.Weights == (Weights{}) {
		opts.Weights, _ = WeightsFor(VariantSemantic)
	}
	if opts.Matcher == (matching.MatcherOptions{}) {
		opts.Matcher = matching.DefaultMatcherOptions()
	}
	return &Scorer{
		vocab:   vocab,
		matcher: matching.NewMatcher(vocab, opts.Matcher),
		opts:    opts,
	}
}

// Vocabulary returns the tables used for canonicalization.
func (s *Scorer) Vocabulary() *matching.Vocabulary {
	return s.vocab
}

// Score computes the match score and breakdown of r against jd.
func (s *Scorer) Score(r *types.Resume, jd *types.JobDescription) types.ScoreResult {
	if r == nil {
		r = &types.Resume{}
	}
	if jd == nil {
		jd = &types.JobDescription{}
	}

	blob := BuildBlob(s.vocab, r)

	required := s.matcher.Coverage(jd.RequiredSkills, blob)
	preferred := s.matcher.Coverage(jd.PreferredSkills, blob)
	keywords := s.matcher.Coverage(jd.Keywords, blob)
	similarity := s.matcher.Similarity(jd.Responsibilities, blob)
	penalty := FormatPenalty(r)

	w := s.opts.Weights
	weighted := required.Ratio*w.Required +
		preferred.Ratio*w.Preferred +
		similarity*w.Semantic +
		keywords.Ratio*w.Keyword +
		penalty

	return types.ScoreResult{
		Value: s.toScore(weighted),
		Breakdown: types.ScoreBreakdown{
			RequiredCoverage:   round3(required.Ratio),
			PreferredCoverage:  round3(preferred.Ratio),
			SemanticSimilarity: round3(similarity),
			KeywordCoverage:    round3(keywords.Ratio),
			FormatPenalty:      penalty,
		},
		MatchedTerms:    distinctTerms(required.Canonical, preferred.Canonical, keywords.Canonical),
		MatchedRequired: required.Matched,
		MissingRequired: required.Missing,
	}
}

// toScore clamps to [0,1], scales to an integer and applies the ceiling.
func (s *Scorer) toScore(weighted float64) int {
	clamped := math.Max(0, math.Min(1, weighted))
	return min(int(math.Round(clamped*100)), s.opts.Ceiling)
}

func distinctTerms(groups ...[]string) []string {
	seen := make(map[string]bool)
	terms := []string{}
	for _, group := range groups {
		for _, term := range group {
			if !seen[term] {
				seen[term] = true
				terms = append(terms, term)
			}
		}
	}
	return terms
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
