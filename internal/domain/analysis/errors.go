package analysis

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a pipeline failure. User-visible messages carry the
// category but never upstream bodies or credentials.
type Code string

const (
	CodeInvalidFormat      Code = "INVALID_FORMAT"
	CodeTooLarge           Code = "TOO_LARGE"
	CodeExtractionFailed   Code = "EXTRACTION_FAILED"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeModelOutputInvalid Code = "MODEL_OUTPUT_INVALID"
	CodeUpstreamError      Code = "UPSTREAM_ERROR"
	CodeSchemaInvalid      Code = "SCHEMA_INVALID"
)

// Error is a coded pipeline error.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// E builds a coded error.
func E(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a coded error around a cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the code from err, or "" when err is not a pipeline error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// MessageOf returns the user-visible message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// HTTPStatus maps an error code to its response status.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidFormat, CodeExtractionFailed:
		return http.StatusBadRequest
	case CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeModelOutputInvalid, CodeUpstreamError, CodeSchemaInvalid:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
