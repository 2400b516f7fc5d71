// Package errors defines the typed error carried from services to the HTTP
// boundary and the status/exposure rules attached to each code.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeMissingArguments Code = "MISSING_ARGUMENTS"
	CodeMalformedPayload Code = "MALFORMED_PAYLOAD"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeNotFound         Code = "NOT_FOUND"
	CodeConflict         Code = "CONFLICT"
	CodeStateConflict    Code = "STATE_CONFLICT"
	CodeIdempotency      Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit        Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeDependency       Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code is rendered to clients. When
// ExposeMessage is false the caller-supplied message is replaced by
// PublicMessage.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	ExposeMessage  bool
}

const (
	flagDetails = 1 << iota
	flagExpose
	flagRetry
)

func meta(status int, public string, flags int) Metadata {
	return Metadata{
		HTTPStatus:     status,
		PublicMessage:  public,
		DetailsAllowed: flags&flagDetails != 0,
		ExposeMessage:  flags&flagExpose != 0,
		Retryable:      flags&flagRetry != 0,
	}
}

var catalog = map[Code]Metadata{
	CodeValidation:       meta(http.StatusBadRequest, "validation failed", flagDetails|flagExpose),
	CodeMissingArguments: meta(http.StatusBadRequest, "missing required arguments", flagDetails|flagExpose),
	CodeMalformedPayload: meta(http.StatusBadRequest, "malformed payload", flagDetails|flagExpose),
	CodeUnauthorized:     meta(http.StatusUnauthorized, "authentication required", flagExpose),
	CodeForbidden:        meta(http.StatusForbidden, "access denied", flagExpose),
	CodeNotFound:         meta(http.StatusNotFound, "resource not found", flagExpose),
	CodeConflict:         meta(http.StatusConflict, "conflict detected", flagDetails|flagExpose),
	CodeStateConflict:    meta(http.StatusUnprocessableEntity, "state transition disallowed", flagDetails|flagExpose),
	CodeIdempotency:      meta(http.StatusConflict, "idempotency key reused", flagDetails|flagExpose),
	CodeRateLimit:        meta(http.StatusTooManyRequests, "rate limit exceeded", flagExpose),
	CodeInternal:         meta(http.StatusInternalServerError, "internal server error", flagRetry),
	CodeDependency:       meta(http.StatusServiceUnavailable, "dependency unavailable", flagDetails|flagExpose|flagRetry),
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if m, ok := catalog[code]; ok {
		return m
	}
	return catalog[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches cause to a typed error. A nil cause behaves like New.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails sets the structured details in place and returns e.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return string(e.code) + ": " + e.message + ": " + e.cause.Error()
	default:
		return string(e.code) + ": " + e.message
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches another *Error with the same code, so sentinels such as
// New(CodeNotFound, "") work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t != nil && t.code == e.code && (t.message == "" || t.message == e.message)
}

// As returns the outermost *Error in err's chain.
func As(err error) *Error {
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
