package parsing

import (
	"errors"
	"fmt"

	"github.com/jonathan/resume-tailor/internal/types"
)

// ErrTooLarge is returned for job descriptions longer than types.MaxJobDescriptionChars.
var ErrTooLarge = fmt.Errorf("job description exceeds %d characters", types.MaxJobDescriptionChars)

// IsTooLarge reports whether err is ErrTooLarge.
func IsTooLarge(err error) bool {
	return errors.Is(err, ErrTooLarge)
}

// APICallError is a failed extraction call other than a quota error.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	return withCause("extraction call failed: "+e.Message, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError is a model reply that did not decode as a job description.
// Attempts counts the replies tried, the strict retry included.
type ParseError struct {
	Message  string
	Attempts int
	Cause    error
}

func (e *ParseError) Error() string {
	msg := "unusable model reply: " + e.Message
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s (after %d attempts)", msg, e.Attempts)
	}
	return withCause(msg, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError is job description input rejected before any model call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid job description input: " + e.Message
	}
	return fmt.Sprintf("invalid job description input %s: %s", e.Field, e.Message)
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return msg + ": " + cause.Error()
}
