// Package apperr classifies errors at operation boundaries so handlers can
// map them to HTTP responses without inspecting storage details.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindStorage
	KindStorageUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	case KindStorageUnavailable:
		return "storage_unavailable"
	default:
		return "internal"
	}
}

// Status returns the HTTP status for the kind. Forbidden renders as 404 so
// callers cannot probe for resources they do not own.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden, KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a client-facing message and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Unauthenticated(msg string) error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Storage wraps a database or filesystem failure. A pool acquisition timeout
// is reported as StorageUnavailable instead.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindStorageUnavailable, Message: "storage unavailable", Err: err}
	}
	return &Error{Kind: KindStorage, Message: "storage failure", Err: err}
}

// KindOf reports the kind of err, or KindInternal if it was never classified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindStorageUnavailable
	}
	return KindInternal
}

// Is reports whether err was classified as kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
