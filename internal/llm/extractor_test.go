package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := BuildExtractionPrompt(JobDescriptionSchema(), "Senior Go engineer wanted")

	assert.True(t, strings.HasPrefix(prompt, "You are an expert job posting analyst"))
	assert.Contains(t, prompt, `"requiredSkills": ["string"] (required)`)
	assert.Contains(t, prompt, `"seniority": "intern|junior|mid|senior|lead|manager"`)
	assert.Contains(t, prompt, "Senior Go engineer wanted")
	assert.True(t, strings.HasSuffix(prompt, "\"\"\"\n"))
}

func TestBuildExtractionPrompt_DefaultType(t *testing.T) {
	schema := ExtractionSchema{
		Description: "Extract.",
		Fields:      []SchemaField{{Name: "a"}, {Name: "b", Type: "number"}},
	}

	prompt := BuildExtractionPrompt(schema, "x")

	assert.Contains(t, prompt, "  \"a\": string,\n")
	assert.Contains(t, prompt, "  \"b\": number\n}")
}

func TestStrictJSONSuffix(t *testing.T) {
	assert.True(t, strings.HasPrefix(StrictJSONSuffix, "\n\n"))
	assert.Contains(t, StrictJSONSuffix, "No markdown")
}
