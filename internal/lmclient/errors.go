package lmclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindValidation      Kind = "validation"
	KindHTTPUnavailable Kind = "http_unavailable"
	KindCLIUnavailable  Kind = "cli_unavailable"
	KindRemote          Kind = "remote_error"
	KindInternal        Kind = "internal"
)

// Error is the single error type surfaced by transports, the facade and the
// domain services.
type Error struct {
	Kind    Kind
	Message string
	// Detail carries optional structured context (status code, exit code, stderr tail).
	Detail map[string]any
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode maps the kind to an HTTP status for the REST layer.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindHTTPUnavailable, KindCLIUnavailable:
		return http.StatusServiceUnavailable
	case KindRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, err error, format string, a ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...), Err: err}
}

// withDetail sets a detail key and returns e for chaining.
func (e *Error) withDetail(key string, v any) *Error {
	if e.Detail == nil {
		e.Detail = make(map[string]any)
	}
	e.Detail[key] = v
	return e
}

// ErrNotFound reports a missing model (or other resource) id.
func ErrNotFound(what, id string) error {
	return newError(KindNotFound, nil, "%s not found: %s", what, id)
}

// ErrValidation reports invalid caller input.
func ErrValidation(format string, a ...any) error {
	return newError(KindValidation, nil, format, a...)
}

// ErrRemote reports a response the server sent that could not be interpreted.
func ErrRemote(err error, format string, a ...any) error {
	return newError(KindRemote, err, format, a...)
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err indicates a missing resource (404).
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// IsValidation reports whether err indicates bad input (400).
func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }

// IsUnavailable reports whether err indicates a transport could not be used (503).
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	k := KindOf(err)
	return k == KindHTTPUnavailable || k == KindCLIUnavailable
}
