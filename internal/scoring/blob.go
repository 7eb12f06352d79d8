package scoring

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/types"
)

// BuildBlob concatenates the matchable text of a resume and returns it in
// canonical form: declared skills, experience role, company and bullets,
// education degree and field, summary, and projects.
func BuildBlob(vocab *matching.Vocabulary, r *types.Resume) string {
	if r == nil {
		return ""
	}

	parts := make([]string, 0, 32)
	parts = append(parts, r.Skills.All()...)
	for _, exp := range r.Experience {
		parts = append(parts, exp.Role, exp.Company)
		parts = append(parts, exp.Bullets...)
	}
	for _, edu := range r.Education {
		parts = append(parts, edu.Degree, edu.Field)
	}
	parts = append(parts, r.Summary)
	for _, p := range r.Projects {
		parts = append(parts, p.Name, p.Description)
		parts = append(parts, p.Technologies...)
	}

	return vocab.Canonical(strings.Join(parts, " \n "))
}

// ApplyEdits returns a clone of r with each edit's bullet replaced by the
// edit's text. Edits addressing a missing bullet or carrying blank text are
// skipped; a later edit of the same bullet wins. r is not modified.
func ApplyEdits(r *types.Resume, edits []types.BulletEdit) *types.Resume {
	clone := r.Clone()
	if clone == nil {
		return clone
	}

	for _, e := range edits {
		text := strings.TrimSpace(e.Text)
		if text == "" || e.ExperienceIndex < 0 || e.ExperienceIndex >= len(clone.Experience) {
			continue
		}
		bullets := clone.Experience[e.ExperienceIndex].Bullets
		if e.BulletIndex < 0 || e.BulletIndex >= len(bullets) {
			continue
		}
		bullets[e.BulletIndex] = text
	}
	return clone
}
