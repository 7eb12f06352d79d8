package types

// ScoreBreakdown holds the named sub-scores behind a match score.
// Coverage and similarity values are in [0,1]; FormatPenalty is in [-0.05, 0].
type ScoreBreakdown struct {
	RequiredCoverage   float64 `json:"requiredCoverage"`
	PreferredCoverage  float64 `json:"preferredCoverage"`
	SemanticSimilarity float64 `json:"semanticSimilarity"`
	KeywordCoverage    float64 `json:"keywordCoverage"`
	FormatPenalty      float64 `json:"formatPenalty"`
}

// ScoreResult is one scoring of a resume against a job description
type ScoreResult struct {
	Value           int            `json:"value"`
	Breakdown       ScoreBreakdown `json:"breakdown"`
	MatchedTerms    []string       `json:"matchedTerms"`
	MatchedRequired []string       `json:"matchedRequired"`
	MissingRequired []string       `json:"missingRequired"`
}

// BulletRewrite pairs an original bullet with its rewritten text
type BulletRewrite struct {
	Original  string `json:"original" validate:"required"`
	Rewritten string `json:"rewritten" validate:"required"`
}

// BulletEdit replaces the text of one experience bullet, addressed by position
type BulletEdit struct {
	ExperienceIndex int    `json:"experienceIndex"`
	BulletIndex     int    `json:"bulletIndex"`
	Text            string `json:"text"`
}

// ScoreResponse reports the before/after comparison for a tailoring session
type ScoreResponse struct {
	BeforeScore      int             `json:"beforeScore"`
	AfterScore       int             `json:"afterScore"`
	Delta            int             `json:"delta"`
	Breakdown        ScoreBreakdown  `json:"breakdown"`
	AfterBreakdown   ScoreBreakdown  `json:"afterBreakdown"`
	MatchedBefore    []string        `json:"matchedBefore"`
	MatchedAfter     []string        `json:"matchedAfter"`
	MissingRequired  []string        `json:"missingRequired"`
	RejectedRewrites []BulletRewrite `json:"rejectedRewrites,omitempty"`
}
