// Package errors defines the coded errors kubetopo returns across the CLI
// and the HTTP API.
//
// A Code is stable and machine-readable; the message is for people. Codes
// are grouped by prefix: INVALID_* for rejected input, *_FAILED for a stage
// that broke, and INTERNAL_ERROR for everything unexpected.
//
//	err := errors.New(errors.ErrCodeInvalidGraph, "node %d has no uid", i)
//	if errors.Is(err, errors.ErrCodeInvalidGraph) { ... }
//
//	err = errors.Wrap(errors.ErrCodeLayoutFailed, cause, "section %d", i)
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidGraph     Code = "INVALID_GRAPH"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidPrimitive Code = "INVALID_PRIMITIVE"
	ErrCodeTooLarge         Code = "TOO_LARGE"

	ErrCodeTimeout          Code = "TIMEOUT"
	ErrCodeCanceled         Code = "CANCELED"
	ErrCodeLayoutFailed     Code = "LAYOUT_FAILED"
	ErrCodeRenderFailed     Code = "RENDER_FAILED"
	ErrCodeCacheUnavailable Code = "CACHE_UNAVAILABLE"
	ErrCodeUnsupported      Code = "UNSUPPORTED"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// statusClientClosed is the nginx convention for a client that went away
// before the response was written.
const statusClientClosed = 499

var httpStatus = map[Code]int{
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidGraph:     http.StatusBadRequest,
	ErrCodeInvalidConfig:    http.StatusBadRequest,
	ErrCodeInvalidFormat:    http.StatusBadRequest,
	ErrCodeInvalidPrimitive: http.StatusBadRequest,
	ErrCodeTooLarge:         http.StatusRequestEntityTooLarge,
	ErrCodeTimeout:          http.StatusGatewayTimeout,
	ErrCodeCanceled:         statusClientClosed,
	ErrCodeCacheUnavailable: http.StatusServiceUnavailable,
	ErrCodeUnsupported:      http.StatusNotImplemented,
}

// Error carries a Code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the first *Error in err's chain. Context
// deadlines and cancellation map to TIMEOUT and CANCELED; anything else
// yields "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	case errors.Is(err, context.Canceled):
		return ErrCodeCanceled
	}
	return ""
}

// UserMessage returns the message of the first *Error in err's chain
// without its code, or err's text for other errors.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// HTTPStatus maps err to the status code the API answers with. Uncoded
// errors are 500.
func HTTPStatus(err error) int {
	if status, ok := httpStatus[GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
