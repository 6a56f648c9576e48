package model

import (
	"errors"
	"fmt"
)

// Kind partitions failures into the cases callers dispatch on.
type Kind int

const (
	KindUnknown Kind = iota
	// KindPermissionDenied: the socket table was unreadable or a signal was
	// disallowed. Surfaced with an elevation hint, never retried.
	KindPermissionDenied
	// KindNotFound: port unoccupied, or the process/container vanished
	// between decision and action.
	KindNotFound
	// KindReadFailed: unexpected failure reading an OS table.
	KindReadFailed
	// KindPlatformError: an OS call failed in a way we pass through raw.
	KindPlatformError
	// KindRuntimeUnavailable: no container runtime; degrades the container
	// feature rather than erroring the snapshot.
	KindRuntimeUnavailable
	// KindInvalidPort: a port argument or range that does not parse.
	KindInvalidPort
)

func (k Kind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission denied"
	case KindNotFound:
		return "not found"
	case KindReadFailed:
		return "read failed"
	case KindPlatformError:
		return "platform error"
	case KindRuntimeUnavailable:
		return "runtime unavailable"
	case KindInvalidPort:
		return "invalid port"
	}
	return "unknown error"
}

// Error carries a Kind alongside the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an Error. The variadic tail accepts an optional cause.
func E(kind Kind, msg string, cause ...error) *Error {
	e := &Error{Kind: kind, Msg: msg}
	if len(cause) > 0 {
		e.Err = cause[0]
	}
	return e
}

// IsKind reports whether err (or anything it wraps) carries the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
