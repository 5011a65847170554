package services

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
	KindUnavailable     Kind = "UNAVAILABLE"
)

// Error is returned by every service operation that fails for a reason the
// caller can act on. NotFound and InvalidArgument are terminal; Unavailable
// means the store could not serve the request and may be retried by clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgument(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func Unavailable(err error, message string) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Err: errors.WithStack(err)}
}

// KindOf returns the kind of a service error anywhere in the chain, or "".
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}

func IsNotFound(err error) bool        { return KindOf(err) == KindNotFound }
func IsInvalidArgument(err error) bool { return KindOf(err) == KindInvalidArgument }
func IsUnavailable(err error) bool     { return KindOf(err) == KindUnavailable }
