// Package apperr classifies failures of the booking core into a small set of
// kinds so that transports can choose a response code without inspecting
// message text.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindValidation
	KindInvalidTransition
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindValidation:
		return "VALIDATION"
	case KindInvalidTransition:
		return "INVALID_TRANSITION"
	default:
		return "INTERNAL"
	}
}

// Error is a classified failure with a message safe to show to end users.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches another *Error with the same kind and message, so package level
// sentinels built with New keep working after being re-created.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

type kinded interface {
	error
	Kind() Kind
}

// KindOf returns the kind of the first classified error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}

	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}

	return KindInternal
}

// MessageOf returns the user facing message of the first classified error in
// err's chain. Unclassified errors yield a generic message.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}

	var k kinded
	if errors.As(err, &k) {
		return k.Error()
	}

	return "internal error"
}
