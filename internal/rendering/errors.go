// Package rendering turns a resume into styled HTML and exports it to PDF.
package rendering

import "fmt"

// TemplateError is a failure executing one of the embedded resume templates.
type TemplateError struct {
	Template string
	Cause    error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("failed to execute %s template: %v", e.Template, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError is a failure producing the exported document. Stage names the
// step that failed: "input" or "print".
type RenderError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("render %s: %s", e.Stage, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
