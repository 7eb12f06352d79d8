// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"strings"
)

// Contact holds the candidate's contact block
type Contact struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`
}

// Experience represents one role in the work history
type Experience struct {
	Company   string   `json:"company"`
	Role      string   `json:"role"`
	Location  string   `json:"location"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	IsCurrent bool     `json:"isCurrent"`
	Bullets   []string `json:"bullets"`
}

// Education represents one education entry
type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	Field          string `json:"field"`
	GraduationDate string `json:"graduationDate,omitempty"`
	StartDate      string `json:"startDate,omitempty"`
	EndDate        string `json:"endDate,omitempty"`
	GPA            string `json:"gpa,omitempty"`
}

// Project represents a side or portfolio project.
// Incoming documents may use either "title" or "name", and "link" or "url".
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link,omitempty"`
}

// UnmarshalJSON accepts the alternate field spellings used by older clients.
func (p *Project) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name         string   `json:"name"`
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		Technologies []string `json:"technologies"`
		Link         string   `json:"link"`
		URL          string   `json:"url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Name = raw.Name
	if p.Name == "" {
		p.Name = raw.Title
	}
	p.Description = raw.Description
	p.Technologies = raw.Technologies
	p.Link = raw.Link
	if p.Link == "" {
		p.Link = raw.URL
	}
	return nil
}

// Skills groups the declared skills of a resume
type Skills struct {
	Languages  []string `json:"languages"`
	Frameworks []string `json:"frameworks"`
	Tools      []string `json:"tools"`
	SoftSkills []string `json:"softSkills"`
}

// All returns every declared skill in group order.
func (s Skills) All() []string {
	all := make([]string, 0, len(s.Languages)+len(s.Frameworks)+len(s.Tools)+len(s.SoftSkills))
	all = append(all, s.Languages...)
	all = append(all, s.Frameworks...)
	all = append(all, s.Tools...)
	all = append(all, s.SoftSkills...)
	return all
}

// Resume is the structured form of a candidate's resume
type Resume struct {
	Contact    Contact      `json:"contact"`
	Summary    string       `json:"summary,omitempty"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Projects   []Project    `json:"projects"`
	Skills     Skills       `json:"skills"`
}

// Sanitize replaces missing arrays with empty ones so downstream code never
// has to distinguish nil from empty. It is applied at every input boundary.
func (r *Resume) Sanitize() {
	if r == nil {
		return
	}
	r.Experience = nonNilSlice(r.Experience)
	r.Education = nonNilSlice(r.Education)
	r.Projects = nonNilSlice(r.Projects)
	r.Skills.Languages = nonNilSlice(r.Skills.Languages)
	r.Skills.Frameworks = nonNilSlice(r.Skills.Frameworks)
	r.Skills.Tools = nonNilSlice(r.Skills.Tools)
	r.Skills.SoftSkills = nonNilSlice(r.Skills.SoftSkills)

	for i := range r.Experience {
		r.Experience[i].Bullets = nonNilSlice(r.Experience[i].Bullets)
		if strings.EqualFold(strings.TrimSpace(r.Experience[i].EndDate), "present") {
			r.Experience[i].IsCurrent = true
		}
	}
	for i := range r.Projects {
		r.Projects[i].Technologies = nonNilSlice(r.Projects[i].Technologies)
	}
}

// Clone returns a deep copy of the resume.
func (r *Resume) Clone() *Resume {
	if r == nil {
		return nil
	}
	c := *r
	c.Experience = make([]Experience, len(r.Experience))
	for i, exp := range r.Experience {
		exp.Bullets = append([]string(nil), exp.Bullets...)
		c.Experience[i] = exp
	}
	c.Education = append([]Education(nil), r.Education...)
	c.Projects = make([]Project, len(r.Projects))
	for i, p := range r.Projects {
		p.Technologies = append([]string(nil), p.Technologies...)
		c.Projects[i] = p
	}
	c.Skills = Skills{
		Languages:  append([]string(nil), r.Skills.Languages...),
		Frameworks: append([]string(nil), r.Skills.Frameworks...),
		Tools:      append([]string(nil), r.Skills.Tools...),
		SoftSkills: append([]string(nil), r.Skills.SoftSkills...),
	}
	c.Sanitize()
	return &c
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
