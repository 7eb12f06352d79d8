package types

import "strings"

// Seniority levels recognised in a job description
const (
	SeniorityIntern  = "intern"
	SeniorityJunior  = "junior"
	SeniorityMid     = "mid"
	SenioritySenior  = "senior"
	SeniorityLead    = "lead"
	SeniorityManager = "manager"
)

var seniorityLevels = map[string]bool{
	SeniorityIntern:  true,
	SeniorityJunior:  true,
	SeniorityMid:     true,
	SenioritySenior:  true,
	SeniorityLead:    true,
	SeniorityManager: true,
}

// YearsExperience is the experience range a posting asks for. Either bound may be absent.
type YearsExperience struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// JobDescription represents the structured requirements extracted from a job posting
type JobDescription struct {
	Title            string          `json:"title"`
	Seniority        string          `json:"seniority"`
	RequiredSkills   []string        `json:"requiredSkills"`
	PreferredSkills  []string        `json:"preferredSkills"`
	SoftSkills       []string        `json:"softSkills"`
	Responsibilities []string        `json:"responsibilities"`
	Keywords         []string        `json:"keywords"`
	YearsExperience  YearsExperience `json:"yearsExperience"`
}

// Sanitize replaces missing arrays with empty ones and normalizes seniority.
// An unrecognised seniority becomes empty (unknown).
func (jd *JobDescription) Sanitize() {
	if jd == nil {
		return
	}
	jd.RequiredSkills = nonNilSlice(jd.RequiredSkills)
	jd.PreferredSkills = nonNilSlice(jd.PreferredSkills)
	jd.SoftSkills = nonNilSlice(jd.SoftSkills)
	jd.Responsibilities = nonNilSlice(jd.Responsibilities)
	jd.Keywords = nonNilSlice(jd.Keywords)

	level := strings.ToLower(strings.TrimSpace(jd.Seniority))
	if !seniorityLevels[level] {
		level = ""
	}
	jd.Seniority = level
}
