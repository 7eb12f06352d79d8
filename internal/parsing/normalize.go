package parsing

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// skillNormalizations maps common skill name variants to canonical display names
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react":      "React",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node":       "Node.js",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"mongo":      "MongoDB",
	"mongodb":    "MongoDB",
	"aws":        "AWS",
	"gcp":        "GCP",
	"sql":        "SQL",
	"graphql":    "GraphQL",
	"ci/cd":      "CI/CD",
	"c#":         "C#",
	"c++":        "C++",
}

// NormalizeSkillName normalizes a skill name to its canonical display form
func NormalizeSkillName(skillName string) string {
	normalized := strings.Join(strings.Fields(skillName), " ")
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	// mixed case is assumed to be deliberate (e.g. "PyTorch")
	if normalized != strings.ToUpper(normalized) && normalized != lower {
		return normalized
	}

	// single all-caps words longer than an acronym read as names
	if normalized == strings.ToUpper(normalized) && !strings.Contains(normalized, " ") && len(normalized) > 4 {
		return normalized[:1] + strings.ToLower(normalized[1:])
	}

	if normalized == lower && !strings.Contains(normalized, " ") {
		return strings.ToUpper(normalized[:1]) + normalized[1:]
	}

	return normalized
}

// NormalizeSkills normalizes every entry and drops empty values and duplicates,
// keeping first-seen order.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		name := NormalizeSkillName(s)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// dedupeText trims entries and drops empty values and case-insensitive duplicates.
func dedupeText(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		key := strings.ToLower(trimmed)
		if trimmed == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}

// NormalizeJobDescription sanitizes jd and canonicalizes its skill lists.
// A skill listed as both required and preferred stays required only.
func NormalizeJobDescription(jd *types.JobDescription) {
	if jd == nil {
		return
	}
	jd.Sanitize()
	jd.Title = strings.TrimSpace(jd.Title)
	jd.RequiredSkills = NormalizeSkills(jd.RequiredSkills)

	required := make(map[string]bool, len(jd.RequiredSkills))
	for _, s := range jd.RequiredSkills {
		required[strings.ToLower(s)] = true
	}
	preferred := make([]string, 0, len(jd.PreferredSkills))
	for _, s := range NormalizeSkills(jd.PreferredSkills) {
		if !required[strings.ToLower(s)] {
			preferred = append(preferred, s)
		}
	}
	jd.PreferredSkills = preferred

	jd.SoftSkills = dedupeText(jd.SoftSkills)
	jd.Responsibilities = dedupeText(jd.Responsibilities)
	jd.Keywords = dedupeText(jd.Keywords)

	ye := jd.YearsExperience
	if ye.Min != nil && *ye.Min < 0 {
		jd.YearsExperience.Min = nil
	}
	if ye.Max != nil && *ye.Max < 0 {
		jd.YearsExperience.Max = nil
	}
	if ye := jd.YearsExperience; ye.Min != nil && ye.Max != nil && *ye.Max < *ye.Min {
		jd.YearsExperience.Min, jd.YearsExperience.Max = ye.Max, ye.Min
	}
}
