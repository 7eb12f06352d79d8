// Package server provides the HTTP API for resume tailoring.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/schemas"
)

// ErrServiceUnavailable is returned by routes that need a language model
// when the server was started without one.
var ErrServiceUnavailable = errors.New("language model is not configured")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var maxBytesErr *http.MaxBytesError

	switch {
	case err == nil:
		return http.StatusOK
	case llm.IsQuota(err):
		return http.StatusTooManyRequests
	case parsing.IsTooLarge(err), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case isValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case isUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isValidation(err error) bool {
	var (
		reqErr    *ErrValidation
		parseErr  *parsing.ValidationError
		fieldErrs validator.ValidationErrors
		schemaErr *schemas.ValidationError
	)
	return errors.As(err, &reqErr) ||
		errors.As(err, &parseErr) ||
		errors.As(err, &fieldErrs) ||
		errors.As(err, &schemaErr) ||
		errors.Is(err, rendering.ErrUnknownTemplate) ||
		errors.Is(err, pipeline.ErrNoJobDescription)
}

// isUpstream reports failures of the model provider or of its replies.
func isUpstream(err error) bool {
	var (
		parseAPIErr   *parsing.APICallError
		parseReplyErr *parsing.ParseError
		rewriteAPIErr *rewriting.APICallError
		rewriteReply  *rewriting.ParseError
		blockedErr    *llm.BlockedError
	)
	return errors.As(err, &blockedErr) ||
		errors.As(err, &parseAPIErr) ||
		errors.As(err, &parseReplyErr) ||
		errors.As(err, &rewriteAPIErr) ||
		errors.As(err, &rewriteReply)
}

// publicMessage is the error text returned to clients. Internal failures are
// not echoed back.
func publicMessage(err error, status int) string {
	switch status {
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusTooManyRequests:
		return "language model quota exceeded, try again later"
	case http.StatusGatewayTimeout:
		return "request timed out"
	default:
		return err.Error()
	}
}
