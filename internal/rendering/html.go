package rendering

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Template names
const (
	TemplateModern  = "modern"
	TemplateClassic = "classic"
)

// DefaultTemplate is used when no template is named
const DefaultTemplate = TemplateModern

// ErrUnknownTemplate is returned for template names that are not embedded.
var ErrUnknownTemplate = errors.New("unknown template")

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = mustParseTemplates()

func mustParseTemplates() map[string]*template.Template {
	funcs := template.FuncMap{"join": strings.Join}
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		panic(err)
	}
	parsed := make(map[string]*template.Template, len(entries))
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".html.tmpl")
		parsed[name] = template.Must(template.New(e.Name()).Funcs(funcs).ParseFS(templateFS, "templates/"+e.Name()))
	}
	return parsed
}

// Templates lists the available template names.
func Templates() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// view is the data the templates render
type view struct {
	Name        string
	Contact     []string
	Summary     string
	Experience  []experienceView
	Education   []educationView
	Projects    []types.Project
	SkillGroups []skillGroup
}

type experienceView struct {
	Company  string
	Role     string
	Location string
	Dates    string
	Bullets  []string
}

type educationView struct {
	Institution string
	Degree      string
	Date        string
	GPA         string
}

type skillGroup struct {
	Label string
	Items []string
}

// RenderHTML renders r with the named template. An empty name selects
// DefaultTemplate. All resume text is HTML-escaped.
func RenderHTML(r *types.Resume, name string) (string, error) {
	if name == "" {
		name = DefaultTemplate
	}
	tmpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %q (available: %s)", ErrUnknownTemplate, name, strings.Join(Templates(), ", "))
	}
	if r == nil {
		return "", &RenderError{Stage: "input", Message: "resume is required"}
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, buildView(r)); err != nil {
		return "", &TemplateError{Template: name, Cause: err}
	}
	return sb.String(), nil
}

func buildView(r *types.Resume) view {
	c := r.Contact
	v := view{
		Name:     c.Name,
		Summary:  r.Summary,
		Projects: r.Projects,
	}
	for _, part := range []string{c.Email, c.Phone, c.Location, c.LinkedIn, c.GitHub, c.Portfolio} {
		if part = strings.TrimSpace(part); part != "" {
			v.Contact = append(v.Contact, part)
		}
	}

	for _, exp := range r.Experience {
		bullets := make([]string, 0, len(exp.Bullets))
		for _, b := range exp.Bullets {
			if b = strings.TrimSpace(b); b != "" {
				bullets = append(bullets, b)
			}
		}
		v.Experience = append(v.Experience, experienceView{
			Company:  exp.Company,
			Role:     exp.Role,
			Location: exp.Location,
			Dates:    formatDates(exp),
			Bullets:  bullets,
		})
	}

	for _, edu := range r.Education {
		degree := edu.Degree
		if edu.Field != "" {
			degree = strings.TrimSpace(degree + " in " + edu.Field)
		}
		date := edu.GraduationDate
		if edu.EndDate != "" {
			date = edu.EndDate
		}
		v.Education = append(v.Education, educationView{
			Institution: edu.Institution,
			Degree:      degree,
			Date:        date,
			GPA:         edu.GPA,
		})
	}

	for _, g := range []skillGroup{
		{"Languages", r.Skills.Languages},
		{"Frameworks", r.Skills.Frameworks},
		{"Tools", r.Skills.Tools},
		{"Soft skills", r.Skills.SoftSkills},
	} {
		if len(g.Items) > 0 {
			v.SkillGroups = append(v.SkillGroups, g)
		}
	}
	return v
}

func formatDates(exp types.Experience) string {
	end := exp.EndDate
	if exp.IsCurrent {
		end = "Present"
	}
	switch {
	case exp.StartDate == "" && end == "":
		return ""
	case exp.StartDate == "":
		return end
	case end == "":
		return exp.StartDate
	}
	return exp.StartDate + " – " + end
}
