package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure categories every component reports.
type Kind string

const (
	KindInvalidRequest       Kind = "invalid_request"
	KindInvalidURL           Kind = "invalid_url"
	KindUnsupportedFormat    Kind = "unsupported_format"
	KindPayloadTooLarge      Kind = "payload_too_large"
	KindDownloadTimeout      Kind = "download_timeout"
	KindDownloadFailed       Kind = "download_failed"
	KindExtractionFailed     Kind = "extraction_failed"
	KindModelUnavailable     Kind = "model_unavailable"
	KindMalformedModelOutput Kind = "malformed_model_output"
	KindInternal             Kind = "internal"
)

var messages = map[Kind]string{
	KindInvalidRequest:       "The request is missing required fields or contains invalid values.",
	KindInvalidURL:           "The resume URL is not a valid http(s) URL.",
	KindUnsupportedFormat:    "Unsupported resume format. Allowed types: .pdf, .docx, .doc.",
	KindPayloadTooLarge:      "The resume file exceeds the maximum allowed size.",
	KindDownloadTimeout:      "Timed out while downloading the resume file.",
	KindDownloadFailed:       "Failed to download the resume file.",
	KindExtractionFailed:     "Could not extract text from the resume file. Please ensure the file is not corrupted.",
	KindModelUnavailable:     "The language model is currently unavailable. Please try again later.",
	KindMalformedModelOutput: "The language model returned a response that could not be understood.",
	KindInternal:             "An unexpected error occurred.",
}

var statuses = map[Kind]int{
	KindInvalidRequest:       http.StatusBadRequest,
	KindInvalidURL:           http.StatusBadRequest,
	KindUnsupportedFormat:    http.StatusUnsupportedMediaType,
	KindPayloadTooLarge:      http.StatusRequestEntityTooLarge,
	KindDownloadTimeout:      http.StatusGatewayTimeout,
	KindDownloadFailed:       http.StatusBadGateway,
	KindExtractionFailed:     http.StatusUnprocessableEntity,
	KindModelUnavailable:     http.StatusServiceUnavailable,
	KindMalformedModelOutput: http.StatusBadGateway,
	KindInternal:             http.StatusInternalServerError,
}

// Message returns the stable user-facing message for a kind.
func (k Kind) Message() string {
	if msg, ok := messages[k]; ok {
		return msg
	}
	return messages[KindInternal]
}

// Status returns the HTTP status code a kind maps to.
func (k Kind) Status() int {
	if code, ok := statuses[k]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// Error is a classified pipeline failure.
type Error struct {
	Kind   Kind
	Detail string
	// RateLimited marks a ModelUnavailable caused by provider quota or rate limiting.
	RateLimited bool
	Cause       error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Message returns the stable user-facing message.
func (e *Error) Message() string {
	return e.Kind.Message()
}

// Status returns the HTTP status code for the error.
func (e *Error) Status() int {
	if e.Kind == KindModelUnavailable && e.RateLimited {
		return http.StatusTooManyRequests
	}
	return e.Kind.Status()
}

// Retryable reports whether the caller may retry the same request later.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindModelUnavailable, KindDownloadTimeout:
		return true
	default:
		return false
	}
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}

// RateLimited builds a ModelUnavailable error for quota or rate-limit responses.
func RateLimited(detail string, cause error) *Error {
	return &Error{Kind: KindModelUnavailable, Detail: detail, RateLimited: true, Cause: cause}
}

// As extracts the classified error from err, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal when err is unclassified.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// HTTPStatus returns the HTTP status code for err.
func HTTPStatus(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status()
	}
	return http.StatusInternalServerError
}
