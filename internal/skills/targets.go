// Package skills builds weighted skill targets from a job description and
// picks the ones a rewrite should focus on.
package skills

import (
	"errors"
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	weightRequired  = 1.0
	weightPreferred = 0.5
	weightKeyword   = 0.3
)

// ErrNoSkills is returned when a job description names no skills or keywords
var ErrNoSkills = errors.New("no skills found in job description")

// BuildSkillTargets builds a weighted list of target skills from a job description.
// Skills are normalized, deduplicated (keeping the highest weight) and sorted by
// descending weight, then name.
func BuildSkillTargets(jd *types.JobDescription) (*types.SkillTargets, error) {
	if jd == nil {
		return nil, ErrNoSkills
	}

	skillMap := make(map[string]*skillInfo)
	for _, s := range jd.RequiredSkills {
		addOrUpdateSkill(skillMap, parsing.NormalizeSkillName(s), weightRequired, types.SkillSourceRequired)
	}
	for _, s := range jd.PreferredSkills {
		addOrUpdateSkill(skillMap, parsing.NormalizeSkillName(s), weightPreferred, types.SkillSourcePreferred)
	}
	for _, k := range jd.Keywords {
		addOrUpdateSkill(skillMap, parsing.NormalizeSkillName(k), weightKeyword, types.SkillSourceKeyword)
	}

	if len(skillMap) == 0 {
		return nil, ErrNoSkills
	}

	skills := make([]types.Skill, 0, len(skillMap))
	for _, info := range skillMap {
		skills = append(skills, types.Skill{Name: info.name, Weight: info.weight, Source: info.source})
	}
	sort.Slice(skills, func(i, j int) bool {
		if skills[i].Weight != skills[j].Weight {
			return skills[i].Weight > skills[j].Weight
		}
		return skills[i].Name < skills[j].Name
	})

	return &types.SkillTargets{Skills: skills}, nil
}

// FocusSkills returns up to limit target names that the canonical resume blob
// does not yet contain, highest weight first. A limit of zero or less means no limit.
func FocusSkills(targets *types.SkillTargets, matcher *matching.Matcher, blob string, limit int) []string {
	if targets == nil || matcher == nil {
		return nil
	}
	missing := matcher.Coverage(targets.Names(), blob).Missing
	if limit > 0 && len(missing) > limit {
		missing = missing[:limit]
	}
	return missing
}

type skillInfo struct {
	name   string
	weight float64
	source string
}

// addOrUpdateSkill keys skills case-insensitively and keeps the maximum weight.
func addOrUpdateSkill(skillMap map[string]*skillInfo, name string, weight float64, source string) {
	if name == "" {
		return
	}
	key := strings.ToLower(name)
	existing, exists := skillMap[key]
	if !exists {
		skillMap[key] = &skillInfo{name: name, weight: weight, source: source}
		return
	}
	if weight > existing.weight {
		existing.weight = weight
		existing.source = source
	}
}
