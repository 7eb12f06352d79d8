package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResume_SanitizeFillsMissingArrays(t *testing.T) {
	var r Resume
	require.NoError(t, json.Unmarshal([]byte(`{"contact":{"name":"Ada"},"experience":[{"company":"Acme","endDate":"Present"}]}`), &r))

	r.Sanitize()

	assert.NotNil(t, r.Education)
	assert.NotNil(t, r.Projects)
	assert.NotNil(t, r.Skills.Languages)
	assert.NotNil(t, r.Skills.SoftSkills)
	require.Len(t, r.Experience, 1)
	assert.NotNil(t, r.Experience[0].Bullets)
	assert.True(t, r.Experience[0].IsCurrent)
}

func TestResume_SanitizeNil(t *testing.T) {
	var r *Resume
	assert.NotPanics(t, func() { r.Sanitize() })
}

func TestResume_CloneIsIndependent(t *testing.T) {
	original := &Resume{
		Experience: []Experience{{Company: "Acme", Bullets: []string{"Built things"}}},
		Skills:     Skills{Languages: []string{"Go"}},
		Projects:   []Project{{Name: "cli", Technologies: []string{"Go"}}},
	}

	clone := original.Clone()
	clone.Experience[0].Bullets[0] = "Changed"
	clone.Skills.Languages[0] = "Rust"
	clone.Projects[0].Technologies[0] = "Zig"

	assert.Equal(t, "Built things", original.Experience[0].Bullets[0])
	assert.Equal(t, "Go", original.Skills.Languages[0])
	assert.Equal(t, "Go", original.Projects[0].Technologies[0])
}

func TestProject_UnmarshalAlternateNames(t *testing.T) {
	var p Project
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Tracker","url":"https://example.com"}`), &p))

	assert.Equal(t, "Tracker", p.Name)
	assert.Equal(t, "https://example.com", p.Link)
}

func TestProject_UnmarshalPrefersCanonicalNames(t *testing.T) {
	var p Project
	require.NoError(t, json.Unmarshal([]byte(`{"name":"A","title":"B","link":"x","url":"y"}`), &p))

	assert.Equal(t, "A", p.Name)
	assert.Equal(t, "x", p.Link)
}

func TestSkills_All(t *testing.T) {
	s := Skills{
		Languages:  []string{"Go"},
		Frameworks: []string{"React"},
		Tools:      []string{"Docker"},
		SoftSkills: []string{"Mentoring"},
	}
	assert.Equal(t, []string{"Go", "React", "Docker", "Mentoring"}, s.All())
}

func TestJobDescription_Sanitize(t *testing.T) {
	tests := []struct {
		name      string
		seniority string
		want      string
	}{
		{name: "known level", seniority: "Senior", want: SenioritySenior},
		{name: "unknown level", seniority: "rockstar", want: ""},
		{name: "padded", seniority: " Lead ", want: SeniorityLead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jd := &JobDescription{Seniority: tt.seniority}
			jd.Sanitize()
			assert.Equal(t, tt.want, jd.Seniority)
			assert.NotNil(t, jd.RequiredSkills)
			assert.NotNil(t, jd.Responsibilities)
			assert.NotNil(t, jd.Keywords)
		})
	}
}

func TestVerifiedBullet_Edit(t *testing.T) {
	accepted := VerifiedBullet{ExperienceIndex: 1, BulletIndex: 2, Original: "Built API", Text: "Built Go API", Accepted: true}
	edit, ok := accepted.Edit()
	require.True(t, ok)
	assert.Equal(t, BulletEdit{ExperienceIndex: 1, BulletIndex: 2, Text: "Built Go API"}, edit)

	fallback := VerifiedBullet{Original: "Built API", Text: "Built API", Accepted: false, Confidence: 30}
	_, ok = fallback.Edit()
	assert.False(t, ok)

	unchanged := VerifiedBullet{Original: "Built API", Text: "Built API", Accepted: true}
	_, ok = unchanged.Edit()
	assert.False(t, ok)
}
