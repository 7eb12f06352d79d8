// Package schemas validates resume and job description documents against
// embedded JSON Schemas before they are decoded.
package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

// Schema names
const (
	Resume         = "resume"
	JobDescription = "job_description"
)

//go:embed json/*.schema.json
var schemaFS embed.FS

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s validation failed:\n", ve.Schema)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// Names lists the embedded schemas.
func Names() []string {
	entries, _ := schemaFS.ReadDir("json")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".schema.json"))
	}
	sort.Strings(names)
	return names
}

// Source returns the raw text of the named schema.
func Source(name string) (string, error) {
	data, err := schemaFS.ReadFile("json/" + name + ".schema.json")
	if err != nil {
		return "", &SchemaLoadError{Name: name, Message: "unknown schema", Cause: err}
	}
	return string(data), nil
}

// Validate checks a JSON document against the named embedded schema.
func Validate(name string, document []byte) error {
	source, err := Source(name)
	if err != nil {
		return err
	}
	return validate(name, gojsonschema.NewStringLoader(source), gojsonschema.NewBytesLoader(document))
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	return validate("(string schema)",
		gojsonschema.NewStringLoader(schemaContent),
		gojsonschema.NewStringLoader(jsonContent))
}

func validate(name string, schema, document gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schema, document)
	if err != nil {
		return &SchemaLoadError{
			Name:    name,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

// DecodeResume validates data against the resume schema and decodes it.
// The result is sanitized.
func DecodeResume(data []byte) (*types.Resume, error) {
	if err := Validate(Resume, data); err != nil {
		return nil, err
	}
	var r types.Resume
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode resume: %w", err)
	}
	r.Sanitize()
	return &r, nil
}

// DecodeJobDescription validates data against the job description schema
// and decodes it. The result is sanitized.
func DecodeJobDescription(data []byte) (*types.JobDescription, error) {
	if err := Validate(JobDescription, data); err != nil {
		return nil, err
	}
	var jd types.JobDescription
	if err := json.Unmarshal(data, &jd); err != nil {
		return nil, fmt.Errorf("failed to decode job description: %w", err)
	}
	jd.Sanitize()
	return &jd, nil
}
