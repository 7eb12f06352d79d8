package scoring

import (
	"sync"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Compare scores the original resume and a candidate (typically the original
// with verified rewrites applied) and reconciles the pair. When the candidate
// matches strictly more distinct required, preferred or keyword terms (or more
// required skills) but the rounded score did not rise, the after score is
// bumped above the before score, up to the ceiling.
func (s *Scorer) Compare(original, candidate *types.Resume, jd *types.JobDescription) types.ScoreResponse {
	var before, after types.ScoreResult

	// Both sides work on their own clone, so the scores are independent.
	origClone := original.Clone()
	candClone := candidate.Clone()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		before = s.Score(origClone, jd)
	}()
	go func() {
		defer wg.Done()
		after = s.Score(candClone, jd)
	}()
	wg.Wait()

	afterValue := after.Value
	improved := len(after.MatchedTerms) > len(before.MatchedTerms) ||
		len(after.MatchedRequired) > len(before.MatchedRequired)
	if improved && afterValue <= before.Value {
		afterValue = min(before.Value+s.opts.Bump, s.opts.Ceiling)
	}

	return types.ScoreResponse{
		BeforeScore:     before.Value,
		AfterScore:      afterValue,
		Delta:           afterValue - before.Value,
		Breakdown:       before.Breakdown,
		AfterBreakdown:  after.Breakdown,
		MatchedBefore:   before.MatchedTerms,
		MatchedAfter:    after.MatchedTerms,
		MissingRequired: after.MissingRequired,
	}
}

// CompareEdits applies edits to a clone of r and compares the result with r.
// With no edits the after score equals the before score.
func (s *Scorer) CompareEdits(r *types.Resume, jd *types.JobDescription, edits []types.BulletEdit) types.ScoreResponse {
	return s.Compare(r, ApplyEdits(r, edits), jd)
}
