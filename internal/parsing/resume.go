package parsing

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	sectionHeader     = "header"
	sectionSummary    = "summary"
	sectionExperience = "experience"
	sectionEducation  = "education"
	sectionSkills     = "skills"
	sectionProjects   = "projects"

	// minBulletChars drops stray fragments that are not achievements
	minBulletChars = 15
)

var sectionPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{sectionExperience, regexp.MustCompile(`^((work|professional|relevant)\s+)?(experience|employment(\s+history)?|work\s+history)$`)},
	{sectionEducation, regexp.MustCompile(`^(education|academic\s+background|qualifications)$`)},
	{sectionSkills, regexp.MustCompile(`^((technical|core|key)\s+)?(skills|competencies|technologies)$`)},
	{sectionProjects, regexp.MustCompile(`^((personal|side|selected|academic)\s+)?projects$|^portfolio$`)},
	{sectionSummary, regexp.MustCompile(`^(professional\s+)?(summary|objective|profile)$|^about(\s+me)?$`)},
}

const dateToken = `(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{4}|\d{1,2}/\d{4}|\d{4}|present|current|now)`

var (
	emailRe     = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe     = regexp.MustCompile(`(\+?1[\s\-.]?)?\(?\d{3}\)?[\s\-.]?\d{3}[\s\-.]?\d{4}`)
	linkedInRe  = regexp.MustCompile(`(?i)linkedin\.com/in/[\w\-%]+`)
	gitHubRe    = regexp.MustCompile(`(?i)github\.com/[\w\-]+`)
	urlRe       = regexp.MustCompile(`(?i)https?://[^\s,)|]+`)
	locationRe  = regexp.MustCompile(`\b[A-Z][a-zA-Z.]+(?: [A-Z][a-zA-Z.]+)*, [A-Z]{2}\b`)
	gpaRe       = regexp.MustCompile(`(?i)gpa:?\s*([0-9]\.[0-9]+)(?:\s*/\s*[0-9.]+)?`)
	dateRangeRe = regexp.MustCompile(`(?i)\b(` + dateToken + `)\s*(?:[–—-]{1,2}|to)\s*\b(` + dateToken + `)`)
	dateRe      = regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{4}\b|\b\d{1,2}/\d{4}\b|\b(?:19|20)\d{2}\b`)
	degreeRe    = regexp.MustCompile(`(?i)(?:\b(?:B\.S\.|M\.S\.|B\.A\.|M\.A\.|Ph\.D\.?)|\b(?:BS|MS|BA|MA|BSc|MSc|MBA|PhD|Bachelor|Master|Doctor|Associate)\b)[^,\n]*`)
	bulletRe    = regexp.MustCompile(`^[-•◦▪▸*]\s*`)
	pastTenseRe = regexp.MustCompile(`^[A-Z][a-z]+ed[ ,]`)
	entrySepRe  = regexp.MustCompile(`\s*(?:,|\s[–—-]{1,2}\s|\s\|\s|\s{2,}|\sat\s)\s*`)
	skillSepRe  = regexp.MustCompile(`[,;|•]`)
)

// ParseResume parses plain resume text into a Resume using section headings
// and line heuristics. No model is involved; the result is deterministic.
func ParseResume(text string) *types.Resume {
	sections := splitSections(text)

	r := &types.Resume{
		Contact:    parseContact(sections[sectionHeader]),
		Summary:    strings.Join(sections[sectionSummary], " "),
		Experience: parseExperience(sections[sectionExperience]),
		Education:  parseEducation(sections[sectionEducation]),
		Projects:   parseProjects(sections[sectionProjects]),
		Skills:     parseSkills(sections[sectionSkills]),
	}
	r.Sanitize()
	return r
}

func splitSections(text string) map[string][]string {
	sections := make(map[string][]string)
	current := sectionHeader
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if name := sectionHeading(line); name != "" {
			current = name
			continue
		}
		sections[current] = append(sections[current], line)
	}
	return sections
}

func sectionHeading(line string) string {
	clean := strings.ToLower(strings.Join(strings.Fields(strings.TrimRight(line, ":.- ")), " "))
	if len(strings.Fields(clean)) > 5 {
		return ""
	}
	for _, sp := range sectionPatterns {
		if sp.pattern.MatchString(clean) {
			return sp.name
		}
	}
	return ""
}

func isBullet(line string) bool {
	return bulletRe.MatchString(line)
}

func stripBullet(line string) string {
	return strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
}

func parseContact(lines []string) types.Contact {
	if len(lines) > 10 {
		lines = lines[:10]
	}
	header := strings.Join(lines, "\n")

	c := types.Contact{
		Email:    emailRe.FindString(header),
		Phone:    strings.TrimSpace(phoneRe.FindString(header)),
		LinkedIn: linkedInRe.FindString(header),
		GitHub:   gitHubRe.FindString(header),
		Location: locationRe.FindString(header),
	}
	for _, u := range urlRe.FindAllString(header, -1) {
		if !linkedInRe.MatchString(u) && !gitHubRe.MatchString(u) {
			c.Portfolio = u
			break
		}
	}

	for _, line := range lines {
		if emailRe.MatchString(line) || phoneRe.MatchString(line) || linkedInRe.MatchString(line) ||
			gitHubRe.MatchString(line) || urlRe.MatchString(line) || locationRe.MatchString(line) {
			continue
		}
		if len(strings.Fields(line)) <= 5 && len(line) >= 3 {
			c.Name = line
			break
		}
	}
	return c
}

// dateRange returns the start and end of the first date range in line. A
// single date is returned as the start. Open-ended ranges end in "Present".
func dateRange(line string) (start, end string, current bool) {
	if m := dateRangeRe.FindStringSubmatch(line); m != nil {
		switch strings.ToLower(m[2]) {
		case "present", "current", "now":
			return m[1], "Present", true
		}
		return m[1], m[2], false
	}
	return dateRe.FindString(line), "", false
}

func hasDate(line string) bool {
	return dateRangeRe.MatchString(line) || dateRe.MatchString(line)
}

func stripDates(line string) string {
	line = dateRangeRe.ReplaceAllString(line, "")
	line = dateRe.ReplaceAllString(line, "")
	return strings.Trim(strings.TrimSpace(line), ",|–—-() ")
}

func splitEntry(s string) []string {
	var parts []string
	for _, p := range entrySepRe.Split(s, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

type experienceBuilder struct {
	exp     types.Experience
	bullets []string
}

func (b *experienceBuilder) addLine(line string) {
	switch {
	case isBullet(line) || pastTenseRe.MatchString(line):
		b.bullets = append(b.bullets, stripBullet(line))
	case len(b.bullets) > 0 && line[0] >= 'a' && line[0] <= 'z':
		// wrapped continuation of the previous bullet
		b.bullets[len(b.bullets)-1] += " " + line
	case b.exp.Company == "" && len(line) < 80:
		b.exp.Company = line
	case b.exp.Location == "" && locationRe.FindString(line) == line:
		b.exp.Location = line
	}
}

func (b *experienceBuilder) build() types.Experience {
	exp := b.exp
	exp.Bullets = make([]string, 0, len(b.bullets))
	for _, bullet := range b.bullets {
		if len(bullet) > minBulletChars {
			exp.Bullets = append(exp.Bullets, bullet)
		}
	}
	return exp
}

// parseExperience starts a new entry at every short non-bullet line carrying
// a date; the text around the dates is read as role, company, location.
func parseExperience(lines []string) []types.Experience {
	var (
		entries []types.Experience
		current *experienceBuilder
	)
	for _, line := range lines {
		if hasDate(line) && !isBullet(line) && len(strings.Fields(line)) <= 12 {
			if current != nil {
				entries = append(entries, current.build())
			}
			start, end, isCurrent := dateRange(line)
			current = &experienceBuilder{exp: types.Experience{StartDate: start, EndDate: end, IsCurrent: isCurrent}}

			parts := splitEntry(stripDates(line))
			if len(parts) > 0 {
				current.exp.Role = parts[0]
			}
			if len(parts) > 1 {
				current.exp.Company = parts[1]
			}
			if len(parts) > 2 {
				current.exp.Location = strings.Join(parts[2:], ", ")
			}
			continue
		}
		if current != nil {
			current.addLine(line)
		}
	}
	if current != nil {
		entries = append(entries, current.build())
	}
	return entries
}

func parseEducation(lines []string) []types.Education {
	var (
		entries []types.Education
		current *types.Education
	)
	push := func() {
		if current != nil && current.Institution != "" {
			entries = append(entries, *current)
		}
	}

	for _, line := range lines {
		if isBullet(line) || len(line) <= 3 {
			continue
		}
		degree := degreeRe.FindString(line)
		gpa := gpaRe.FindStringSubmatch(line)
		dated := hasDate(line)

		startsNew := current == nil ||
			(degree != "" && current.Degree != "") ||
			(degree == "" && gpa == nil && !dated && current.Institution != "" && current.Degree != "")
		if startsNew {
			push()
			current = &types.Education{}
		}

		if degree != "" {
			current.Degree, current.Field = splitDegree(stripDates(degree))
		}
		if gpa != nil {
			current.GPA = gpa[1]
		}
		if dated {
			start, end, _ := dateRange(line)
			if end == "" {
				current.GraduationDate = start
			} else {
				current.StartDate, current.EndDate = start, end
			}
		}

		rest := gpaRe.ReplaceAllString(degreeRe.ReplaceAllString(line, ""), "")
		if rest = stripDates(rest); current.Institution == "" && len(rest) > 2 {
			current.Institution = strings.TrimRight(rest, ",.- ")
		}
	}
	push()
	return entries
}

// splitDegree separates "B.S. in Computer Science" into degree and field.
func splitDegree(s string) (degree, field string) {
	s = strings.TrimSpace(s)
	for _, sep := range []string{" in ", " of "} {
		if i := strings.Index(s, sep); i > 0 {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):])
		}
	}
	return s, ""
}

func skillList(s string) []string {
	var out []string
	for _, item := range skillSepRe.Split(s, -1) {
		item = strings.TrimSpace(item)
		if len(item) > 1 && len(item) < 50 {
			out = append(out, item)
		}
	}
	return out
}

// parseSkills sorts "Label: a, b" lines into groups by label. Unlabelled
// and unrecognised lines count as tools.
func parseSkills(lines []string) types.Skills {
	var s types.Skills
	for _, line := range lines {
		line = stripBullet(line)
		label, value, ok := strings.Cut(line, ":")
		if !ok || len(label) >= 30 {
			s.Tools = append(s.Tools, skillList(line)...)
			continue
		}

		items := skillList(value)
		switch label = strings.ToLower(strings.TrimSpace(label)); {
		case strings.HasPrefix(label, "language") || strings.HasPrefix(label, "programming"):
			s.Languages = append(s.Languages, items...)
		case strings.HasPrefix(label, "framework") || strings.HasPrefix(label, "librar") ||
			strings.HasPrefix(label, "frontend") || strings.HasPrefix(label, "backend"):
			s.Frameworks = append(s.Frameworks, items...)
		case strings.HasPrefix(label, "soft") || strings.HasPrefix(label, "interpersonal"):
			s.SoftSkills = append(s.SoftSkills, items...)
		default:
			s.Tools = append(s.Tools, items...)
		}
	}

	s.Languages = NormalizeSkills(s.Languages)
	s.Frameworks = NormalizeSkills(s.Frameworks)
	s.Tools = NormalizeSkills(s.Tools)
	s.SoftSkills = dedupeText(s.SoftSkills)
	return s
}

// parseProjects treats each short non-bullet line as a project title, with
// an optional "| tech, tech" suffix. Following lines are its description.
func parseProjects(lines []string) []types.Project {
	var (
		projects []types.Project
		current  *types.Project
		desc     []string
	)
	push := func() {
		if current != nil {
			current.Description = strings.Join(desc, " ")
			projects = append(projects, *current)
		}
	}

	for _, line := range lines {
		text := stripBullet(line)
		if label, value, ok := strings.Cut(text, ":"); ok && current != nil && isTechLabel(label) {
			current.Technologies = NormalizeSkills(append(current.Technologies, skillList(value)...))
			continue
		}
		if url := urlRe.FindString(line); url != "" && current != nil && !isBullet(line) {
			current.Link = url
			continue
		}
		if !isBullet(line) && len(line) < 80 {
			push()
			name, tech, _ := strings.Cut(line, "|")
			current = &types.Project{Name: strings.TrimSpace(name), Technologies: NormalizeSkills(skillList(tech))}
			desc = nil
			continue
		}
		if current != nil {
			desc = append(desc, text)
		}
	}
	push()
	return projects
}

func isTechLabel(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "tech", "technologies", "stack", "tech stack", "built with":
		return true
	}
	return false
}
