package scoring

import (
	"math/rand"
	"testing"

	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frontendJD() *types.JobDescription {
	jd := &types.JobDescription{
		Title:          "Full Stack Engineer",
		RequiredSkills: []string{"React", "Node.js", "TypeScript"},
	}
	jd.Sanitize()
	return jd
}

func reactOnlyResume() *types.Resume {
	r := &types.Resume{
		Contact: types.Contact{Name: "Sam Doe"},
		Experience: []types.Experience{{
			Company:   "Acme",
			Role:      "Frontend Developer",
			StartDate: "05/2018",
			EndDate:   "Present",
			Bullets:   []string{"Built customer dashboards", "Mentored two interns"},
		}},
		Skills: types.Skills{Frameworks: []string{"React.js"}},
	}
	r.Sanitize()
	return r
}

func TestScore_OnlyReactMentioned(t *testing.T) {
	s := NewScorer(nil, DefaultOptions())

	result := s.Score(reactOnlyResume(), frontendJD())

	assert.InDelta(t, 0.333, result.Breakdown.RequiredCoverage, 0.001)
	assert.Equal(t, 1.0, result.Breakdown.PreferredCoverage)
	assert.Equal(t, matching.DefaultNeutralSimilarity, result.Breakdown.SemanticSimilarity)
	assert.Equal(t, 0.0, result.Breakdown.FormatPenalty)
	// 0.45/3 + 0.25 + 0.30*0.8 = 0.64
	assert.Equal(t, 64, result.Value)
	assert.Equal(t, []string{"React"}, result.MatchedRequired)
	assert.Equal(t, []string{"Node.js", "TypeScript"}, result.MissingRequired)
}

func TestCompareEdits_RewriteAddsRequiredSkills(t *testing.T) {
	s := NewScorer(nil, DefaultOptions())
	r := reactOnlyResume()

	resp := s.CompareEdits(r, frontendJD(), []types.BulletEdit{{ExperienceIndex: 0, BulletIndex: 0, Text: "Built customer dashboards with Node.js, TypeScript, AWS, Docker"}})

	assert.InDelta(t, 0.333, resp.Breakdown.RequiredCoverage, 0.001)
	assert.Equal(t, 1.0, resp.AfterBreakdown.RequiredCoverage)
	assert.Greater(t, resp.AfterScore, resp.BeforeScore)
	assert.Equal(t, 64, resp.BeforeScore)
	assert.Equal(t, 94, resp.AfterScore)
	assert.Equal(t, 30, resp.Delta)
	assert.Empty(t, resp.MissingRequired)

	// The caller's resume is untouched.
	assert.Equal(t, "Built customer dashboards", r.Experience[0].Bullets[0])
}

func TestCompareEdits_NoEdits(t *testing.T) {
	s := NewScorer(nil, DefaultOptions())

	resp := s.CompareEdits(reactOnlyResume(), frontendJD(), nil)

	assert.Equal(t, resp.BeforeScore, resp.AfterScore)
	assert.Equal(t, resp.Breakdown, resp.AfterBreakdown)
	assert.Zero(t, resp.Delta)
}

func TestCompare_BumpWhenRoundingHidesImprovement(t *testing.T) {
	s := NewScorer(nil, DefaultOptions())

	// Keywords carry no weight in the semantic variant, so a new keyword match
	// leaves the weighted score unchanged.
	jd := &types.JobDescription{
		RequiredSkills: []string{"Rust"},
		Keywords:       []string{"Kafka"},
	}
	jd.Sanitize()

	original := reactOnlyResume()
	candidate := ApplyEdits(original, []types.BulletEdit{{ExperienceIndex: 0, BulletIndex: 0, Text: "Built customer dashboards fed by Kafka streams"}})

	plain := s.Score(original, jd)
	rewritten := s.Score(candidate, jd)
	require.Equal(t, plain.Value, rewritten.Value, "precondition: raw scores tie")

	resp := s.Compare(original, candidate, jd)

	assert.Equal(t, plain.Value, resp.BeforeScore)
	assert.Equal(t, plain.Value+DefaultBump, resp.AfterScore)
	assert.Greater(t, len(resp.MatchedAfter), len(resp.MatchedBefore))
}

func TestCompare_BumpIsCappedAtCeiling(t *testing.T) {
	s := NewScorer(nil, DefaultOptions())

	jd := &types.JobDescription{Keywords: []string{"Kafka"}}
	jd.Sanitize()

	original := reactOnlyResume()
	candidate := ApplyEdits(original, []types.BulletEdit{{ExperienceIndex: 0, BulletIndex: 0, Text: "Built Kafka-backed customer dashboards"}})

	resp := s.Compare(original, candidate, jd)

	// 0.45 + 0.25 + 0.30*0.8 = 0.94
	assert.Equal(t, 94, resp.BeforeScore)
	assert.Equal(t, DefaultCeiling, resp.AfterScore)
}

func TestCompare_NoBumpWithoutNewMatches(t *testing.T) {
	s := NewScorer(nil, DefaultOptions())
	original := reactOnlyResume()
	candidate := ApplyEdits(original, []types.BulletEdit{{ExperienceIndex: 0, BulletIndex: 0, Text: "Designed customer dashboards"}})

	resp := s.Compare(original, candidate, frontendJD())
	assert.Equal(t, resp.BeforeScore, resp.AfterScore)
}

func TestScore_CeilingApplied(t *testing.T) {
	s := NewScorer(nil, DefaultOptions())

	r := reactOnlyResume()
	r.Skills.Languages = []string{"TypeScript"}
	r.Skills.Tools = []string{"Node.js"}

	result := s.Score(r, &types.JobDescription{
		RequiredSkills:   []string{"React", "Node.js", "TypeScript"},
		Responsibilities: []string{"Customer dashboards"},
	})

	assert.Equal(t, 1.0, result.Breakdown.RequiredCoverage)
	assert.Equal(t, 1.0, result.Breakdown.SemanticSimilarity)
	assert.Equal(t, DefaultCeiling, result.Value)
}

func TestScore_ClampedAtZero(t *testing.T) {
	s := NewScorer(nil, Options{Weights: Weights{Required: 1}})

	r := resumeWithDates([][2]string{{"05/2018", "06/2018"}, {"Jan 2017", "Feb 2017"}})
	result := s.Score(r, &types.JobDescription{RequiredSkills: []string{"COBOL"}})

	assert.Equal(t, InconsistentDatePenalty, result.Breakdown.FormatPenalty)
	assert.Equal(t, 0, result.Value)
}

func TestScore_NilInputs(t *testing.T) {
	s := NewScorer(nil, DefaultOptions())

	assert.NotPanics(t, func() {
		result := s.Score(nil, nil)
		assert.GreaterOrEqual(t, result.Value, 0)
		assert.LessOrEqual(t, result.Value, DefaultCeiling)
	})
}

func TestScore_KeywordVariant(t *testing.T) {
	w, err := WeightsFor(VariantKeyword)
	require.NoError(t, err)
	s := NewScorer(nil, Options{Weights: w})

	jd := &types.JobDescription{Keywords: []string{"dashboards", "graphql", "kafka", "rust"}}
	result := s.Score(reactOnlyResume(), jd)

	assert.Equal(t, 0.25, result.Breakdown.KeywordCoverage)
	// 0.40 + 0.15 + 0.20*0.8 + 0.25*0.25 = 0.7725
	assert.Equal(t, 77, result.Value)
}

func TestWeightsFor(t *testing.T) {
	for _, v := range []Variant{VariantSemantic, VariantKeyword, ""} {
		w, err := WeightsFor(v)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, w.Required+w.Preferred+w.Semantic+w.Keyword, 1e-9)
	}

	_, err := WeightsFor("bogus")
	assert.Error(t, err)
}

func TestBuildBlob(t *testing.T) {
	vocab := matching.DefaultVocabulary()
	r := &types.Resume{
		Summary:    "Engineer who likes JS",
		Experience: []types.Experience{{Company: "Initech", Role: "SRE", Bullets: []string{"Ran k8s clusters"}}},
		Education:  []types.Education{{Degree: "BSc", Field: "Physics", Institution: "Hidden U"}},
		Projects:   []types.Project{{Name: "Tracker", Description: "Budget app", Technologies: []string{"Vue.js"}}},
		Skills:     types.Skills{Tools: []string{"Terraform"}},
	}

	blob := BuildBlob(vocab, r)

	for _, want := range []string{"javascript", "initech", "sre", "kubernetes", "bsc", "physics", "tracker", "budget", "vue", "terraform"} {
		assert.Contains(t, blob, want)
	}
	assert.NotContains(t, blob, "hidden", "institution is not matchable text")
	assert.Equal(t, "", BuildBlob(vocab, nil))
}

func TestApplyEdits(t *testing.T) {
	r := &types.Resume{Experience: []types.Experience{
		{Bullets: []string{"  Built API  ", "Wrote docs"}},
		{Bullets: []string{"Built API"}},
	}}

	out := ApplyEdits(r, []types.BulletEdit{
		{ExperienceIndex: 0, BulletIndex: 0, Text: " Built Go API "},
		{ExperienceIndex: 0, BulletIndex: 1, Text: "  "},
		{ExperienceIndex: 1, BulletIndex: 5, Text: "out of range"},
		{ExperienceIndex: 3, BulletIndex: 0, Text: "no such role"},
		{ExperienceIndex: -1, BulletIndex: 0, Text: "negative"},
	})

	assert.Equal(t, "Built Go API", out.Experience[0].Bullets[0])
	assert.Equal(t, "Wrote docs", out.Experience[0].Bullets[1])
	assert.Equal(t, "Built API", out.Experience[1].Bullets[0], "identical text in another role is left alone")
	assert.Equal(t, "  Built API  ", r.Experience[0].Bullets[0])
	assert.Nil(t, ApplyEdits(nil, nil))
}

// Adding required skills to a bullet never lowers the reported score.
func TestCompare_MonotonicInRequiredMatches(t *testing.T) {
	s := NewScorer(nil, DefaultOptions())
	skills := []string{"Go", "Rust", "Kafka", "Postgres", "Docker", "Terraform", "GraphQL", "Redis"}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		jd := &types.JobDescription{
			RequiredSkills:   pick(rng, skills, 1+rng.Intn(4)),
			PreferredSkills:  pick(rng, skills, rng.Intn(3)),
			Keywords:         pick(rng, skills, rng.Intn(3)),
			Responsibilities: []string{"Operate " + skills[rng.Intn(len(skills))] + " services"},
		}
		jd.Sanitize()

		original := &types.Resume{Experience: []types.Experience{{
			Bullets: []string{"Operated services", "Handled " + skills[rng.Intn(len(skills))]},
		}}}
		original.Sanitize()

		addition := jd.RequiredSkills[rng.Intn(len(jd.RequiredSkills))]
		candidate := ApplyEdits(original, []types.BulletEdit{{ExperienceIndex: 0, BulletIndex: 0, Text: "Operated services using " + addition}})

		before := s.Score(original, jd)
		after := s.Score(candidate, jd)
		resp := s.Compare(original, candidate, jd)

		if len(after.MatchedRequired) > len(before.MatchedRequired) {
			require.GreaterOrEqual(t, resp.AfterScore, resp.BeforeScore, "iteration %d", i)
		}
		require.LessOrEqual(t, resp.AfterScore, DefaultCeiling)
	}
}

func pick(rng *rand.Rand, from []string, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, from[rng.Intn(len(from))])
	}
	return out
}
