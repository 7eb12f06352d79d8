package rewriting

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
	"golang.org/x/text/width"
)

var digitRun = regexp.MustCompile(`\p{Nd}+`)

// VerifyContext is everything a rewrite may legitimately draw numbers from
type VerifyContext struct {
	BulletText string
	// KnownContext holds other text about the same role: company, title,
	// dates and sibling bullets
	KnownContext []string
}

// Verdict is the outcome of verifying one proposed rewrite
type Verdict struct {
	Accepted bool
	// Invented lists digit runs in the proposal that appear nowhere in the context
	Invented []string
}

// ExtractNumbers returns every maximal run of decimal digits in s, in order.
// Full-width digits are folded to ASCII; digits of other scripts are kept as
// written, so they only match the same script in the context.
func ExtractNumbers(s string) []string {
	runs := digitRun.FindAllString(s, -1)
	for i, run := range runs {
		runs[i] = width.Fold.String(run)
	}
	return runs
}

// Verify rejects a proposal containing any digit run that does not occur in
// the original bullet or its known context. Rewording a number ("15%" to
// "15 percent") passes; introducing one ("40%") does not.
func Verify(ctx VerifyContext, proposed string) Verdict {
	known := make(map[string]struct{})
	for _, n := range ExtractNumbers(ctx.BulletText) {
		known[n] = struct{}{}
	}
	for _, text := range ctx.KnownContext {
		for _, n := range ExtractNumbers(text) {
			known[n] = struct{}{}
		}
	}

	var invented []string
	seen := make(map[string]bool)
	for _, n := range ExtractNumbers(proposed) {
		if _, ok := known[n]; ok || seen[n] {
			continue
		}
		seen[n] = true
		invented = append(invented, n)
	}

	return Verdict{Accepted: len(invented) == 0, Invented: invented}
}

// ContextFor builds the verification context of one bullet of an experience
// entry. An out-of-range index yields an empty bullet text.
func ContextFor(exp types.Experience, bulletIndex int) VerifyContext {
	vc := VerifyContext{
		KnownContext: []string{exp.Company, exp.Role, exp.Location, exp.StartDate, exp.EndDate},
	}
	for i, bullet := range exp.Bullets {
		if i == bulletIndex {
			vc.BulletText = bullet
			continue
		}
		vc.KnownContext = append(vc.KnownContext, bullet)
	}
	return vc
}

// VerifyRewrites checks caller-supplied rewrites against the resume they
// apply to. Every bullet whose trimmed text equals a rewrite's original is
// verified against its own role's context, and an edit is returned only for
// the bullets where the rewrite passed. A rewrite that fails at any of its
// bullets is reported in rejected. A rewrite matching no bullet produces no
// edit and is rejected only if it invents numbers relative to its original.
func VerifyRewrites(r *types.Resume, rewrites []types.BulletRewrite) (edits []types.BulletEdit, rejected []types.BulletRewrite) {
	edits = []types.BulletEdit{}
	rejected = []types.BulletRewrite{}
	for _, rw := range rewrites {
		text := strings.TrimSpace(rw.Rewritten)
		positions := findBullets(r, rw.Original)
		if len(positions) == 0 {
			if !Verify(VerifyContext{BulletText: rw.Original}, text).Accepted {
				rejected = append(rejected, rw)
			}
			continue
		}

		failed := false
		for _, pos := range positions {
			vc := ContextFor(r.Experience[pos.ExperienceIndex], pos.BulletIndex)
			if !Verify(vc, text).Accepted {
				failed = true
				continue
			}
			pos.Text = text
			edits = append(edits, pos)
		}
		if failed {
			rejected = append(rejected, rw)
		}
	}
	return edits, rejected
}

// findBullets returns the position of every experience bullet whose trimmed
// text equals text.
func findBullets(r *types.Resume, text string) []types.BulletEdit {
	want := strings.TrimSpace(text)
	if r == nil || want == "" {
		return nil
	}
	var positions []types.BulletEdit
	for i, exp := range r.Experience {
		for j, b := range exp.Bullets {
			if strings.TrimSpace(b) == want {
				positions = append(positions, types.BulletEdit{ExperienceIndex: i, BulletIndex: j})
			}
		}
	}
	return positions
}
