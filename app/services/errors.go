// Package services holds the storefront's business rules. Controllers call
// services; services call repositories and the outbound gateways.
package services

import (
	"errors"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/repositories"
)

// Kind classifies a service failure; controllers map it onto an HTTP
// status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindPaymentRequired
)

// Error is a failure whose Message is safe to show to clients.
type Error struct {
	Kind    Kind
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

// Is matches sentinel errors of the same Kind, so
// errors.Is(err, services.ErrNotFound) holds for any not-found Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrPaymentRequired = &Error{Kind: KindPaymentRequired}
)

func validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func conflict(msg string, err error) error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

func internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// lookup turns a repository not-found into a client-facing not-found and
// anything else into an internal error.
func lookup(err error, format string, args ...any) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(format, args...)
	}
	return internal("Database error", err)
}

// KindOf reports the Kind of err; plain errors are internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of err.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return "Internal server error"
}
