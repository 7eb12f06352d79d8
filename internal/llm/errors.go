package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// QuotaError is returned when the provider rejects a call for quota or rate
// limit reasons. It is never retried.
type QuotaError struct {
	Message string
	Cause   error
}

func (e *QuotaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("quota exceeded: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("quota exceeded: %s", e.Message)
}

func (e *QuotaError) Unwrap() error {
	return e.Cause
}

// IsQuota reports whether err is or wraps a *QuotaError.
func IsQuota(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// isQuotaCause classifies a raw provider error as a quota rejection.
func isQuotaCause(err error) bool {
	if err == nil {
		return false
	}
	if IsQuota(err) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	if st, ok := status.FromError(err); ok && st.Code() == codes.ResourceExhausted {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

// isTransient reports whether a failed call is worth retrying.
func isTransient(err error) bool {
	if err == nil || isQuotaCause(err) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500 || apiErr.Code == http.StatusRequestTimeout
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Internal, codes.Aborted:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") || strings.Contains(msg, "timeout")
}
