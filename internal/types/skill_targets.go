package types

// Skill sources, in decreasing priority
const (
	SkillSourceRequired  = "required"
	SkillSourcePreferred = "preferred"
	SkillSourceKeyword   = "keyword"
)

// Skill represents a target skill with its weight and source
type Skill struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Source string  `json:"source"`
}

// SkillTargets is the weighted skill list derived from a job description,
// sorted by descending weight
type SkillTargets struct {
	Skills []Skill `json:"skills"`
}

// Names returns the skill names in order.
func (t *SkillTargets) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.Skills))
	for i, s := range t.Skills {
		names[i] = s.Name
	}
	return names
}
