package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a request cannot be dispatched (e.g. empty topic).
	ErrValidation = errors.New("validation error")

	// ErrConfig is returned when the model credential or client is missing.
	ErrConfig = errors.New("AI service is not configured")

	// ErrRateLimited maps upstream HTTP 429.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrQuotaExceeded maps upstream HTTP 402.
	ErrQuotaExceeded = errors.New("AI credits depleted")

	// ErrUpstream covers every other non-2xx upstream answer and transport failure.
	ErrUpstream = errors.New("AI gateway error")

	// ErrUpstreamTimeout is returned when the upstream call exceeds its deadline.
	ErrUpstreamTimeout = errors.New("AI gateway timed out")

	// ErrParse is matched by *ParseError.
	ErrParse = errors.New("failed to parse AI response")
)

// UpstreamError carries the upstream status code. Kind is one of
// ErrRateLimited, ErrQuotaExceeded or ErrUpstream.
type UpstreamError struct {
	Kind       error
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %d", e.Kind, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Kind
}

// newStatusError classifies a non-2xx upstream status.
func newStatusError(status int, body string) *UpstreamError {
	kind := ErrUpstream
	switch status {
	case 429:
		kind = ErrRateLimited
	case 402:
		kind = ErrQuotaExceeded
	}
	return &UpstreamError{Kind: kind, StatusCode: status, Body: body}
}

// ParseError is returned when no JSON value can be extracted from the model output.
type ParseError struct {
	Size int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (%d bytes): %v", ErrParse, e.Size, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ErrorKind returns a short label for err, used for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, ErrUpstreamTimeout):
		return "upstream_timeout"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrParse):
		return "parse"
	default:
		return "unknown"
	}
}
