package llm

import (
	"fmt"
	"strings"
)

// StrictJSONSuffix is appended to an extraction prompt when the first
// response could not be parsed.
const StrictJSONSuffix = "\n\nReturn strictly valid JSON. No explanation. No markdown. Just the raw JSON object."

// extractionRules close every extraction prompt.
var extractionRules = []string{
	"Extract information directly from the text, do not invent or summarize.",
	"Use empty arrays for lists with no entries.",
	"Return ONLY the JSON object, no markdown, no explanation, no code blocks.",
}

// ExtractionSchema describes the JSON document an extraction prompt asks for
type ExtractionSchema struct {
	Name        string
	Description string
	Fields      []SchemaField
}

// SchemaField is one field of the extraction output
type SchemaField struct {
	Name        string // JSON field name
	Type        string // type hint shown to the model; "string" when empty
	Description string
	Required    bool
}

// line renders the field as one entry of the JSON outline.
func (f SchemaField) line() string {
	typeHint := f.Type
	if typeHint == "" {
		typeHint = "string"
	}
	s := fmt.Sprintf("%q: %s", f.Name, typeHint)
	if f.Required {
		s += " (required)"
	}
	return s
}

// BuildExtractionPrompt lays out the schema description, a JSON outline of
// the fields, the extraction rules and the quoted input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\nReturn ONLY valid JSON matching this exact structure:\n{\n", schema.Description)

	for i, field := range schema.Fields {
		sb.WriteString("  " + field.line())
		if i < len(schema.Fields)-1 {
			sb.WriteByte(',')
		}
		if field.Description != "" {
			sb.WriteString(" // " + field.Description)
		}
		sb.WriteByte('\n')
	}

	sb.WriteString("}\n\nIMPORTANT:\n")
	for _, rule := range extractionRules {
		sb.WriteString("- " + rule + "\n")
	}
	fmt.Fprintf(&sb, "\nInput text:\n\"\"\"\n%s\n\"\"\"\n", inputText)
	return sb.String()
}

// JobDescriptionSchema returns the extraction schema for job postings.
func JobDescriptionSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "JobDescription",
		Description: `You are an expert job posting analyst. Extract the structured requirements from the job description below.
Skills should be short canonical names (e.g. "React", "Kubernetes", "PostgreSQL"), one per entry.
Exclude EEO statements, benefits, and generic company boilerplate.`,
		Fields: []SchemaField{
			{Name: "title", Type: `"string"`, Description: "Job title as written", Required: true},
			{Name: "seniority", Type: `"intern|junior|mid|senior|lead|manager"`, Description: "Seniority level, empty if unclear"},
			{Name: "requiredSkills", Type: `["string"]`, Description: "Skills the posting requires", Required: true},
			{Name: "preferredSkills", Type: `["string"]`, Description: "Nice-to-have or bonus skills"},
			{Name: "softSkills", Type: `["string"]`, Description: "Interpersonal skills such as communication"},
			{Name: "responsibilities", Type: `["string"]`, Description: "Day-to-day duties, one sentence each", Required: true},
			{Name: "keywords", Type: `["string"]`, Description: "Other domain terms an ATS would scan for"},
			{Name: "yearsExperience", Type: `{"min": number|null, "max": number|null}`, Description: "Years of experience requested"},
		},
	}
}
