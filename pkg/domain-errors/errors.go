// Package domainerrors carries the error taxonomy shared by services, stores and
// transports. A Code classifies the failure (and drives the HTTP status); an
// optional Reason names the exact protocol failure so callers can match on it
// with errors.Is without string comparisons.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code is the coarse category of a domain error.
type Code string

const (
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"
	CodeValidation         Code = "validation_error"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvalidRequest     Code = "invalid_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeRateLimited        Code = "rate_limited"
	CodeInsufficientFunds  Code = "insufficient_funds"
	CodeIntegrity          Code = "integrity_error"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
)

// Error is the concrete domain error type.
type Error struct {
	Code    Code
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by reason when the target has one, otherwise by code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Reason != "" {
		return e.Reason == t.Reason
	}
	return t.Message == "" && e.Code == t.Code
}

// New creates a domain error with a category and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// NewReason is New with a stable reason identifier attached.
func NewReason(code Code, reason, msg string) *Error {
	return &Error{Code: code, Reason: reason, Message: msg}
}

// Wrap attaches a category and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// WithCause returns a copy of e that wraps cause, keeping code and reason.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// Is reports whether err (or anything it wraps) is a domain error with code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// HasCode is an alias of Is kept for readability at call sites that test codes.
func HasCode(err error, code Code) bool {
	return Is(err, code)
}

// CodeOf returns the code of the outermost domain error, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ReasonOf returns the reason of the outermost domain error that carries one.
func ReasonOf(err error) string {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return ""
		}
		if de.Reason != "" {
			return de.Reason
		}
		err = de.Err
	}
	return ""
}

// HTTPStatus maps an error code to the response status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest, CodeInvalidInput, CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeInsufficientFunds, CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
