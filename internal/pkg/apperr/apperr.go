// Package apperr defines the error taxonomy shared by services and HTTP
// handlers. Handlers translate a Kind into a status code; anything that is
// not an *Error is treated as an unexpected failure.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindInvalid is a well-formed request carrying a value outside its
	// allowed set, e.g. an unknown severity or vote type.
	KindInvalid Kind = iota + 1
	// KindUnprocessable is a request that fails schema validation: a
	// missing field, malformed JSON or oversize text.
	KindUnprocessable
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "validation_error"
	case KindUnprocessable:
		return "unprocessable_entity"
	case KindNotFound:
		return "not_found"
	default:
		return "internal_error"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func Unprocessable(format string, args ...any) *Error {
	return &Error{Kind: KindUnprocessable, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind carried by err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
