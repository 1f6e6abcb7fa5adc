// Package pgerr defines the discriminated error taxonomy used across the
// database (spec §7).
//
// The teacher package (storage) exposes a flat set of sentinel errors
// (ErrNotFound, ErrInvalidID, ...) suitable for errors.Is checks but with no
// room for an inner cause or a machine-checkable "kind". This domain needs
// both — an I/O failure from the KV engine still needs to be reported as
// Kind Io while preserving the underlying *os.PathError or badger error —
// so errors here are a small typed struct instead, generalized from the
// teacher's sentinel idiom rather than replacing it outright.
package pgerr

import (
	"errors"
	"fmt"
)

// Kind discriminates the error taxonomy of spec §7.
type Kind int

const (
	// Validation covers invalid identifiers, oversized values, and
	// null values passed to set_properties.
	Validation Kind = iota
	// Unsupported covers query shapes the builder rejects at construction
	// time, and operations a backend does not implement.
	Unsupported
	// NotIndexed covers property-predicate queries naming an unindexed
	// property.
	NotIndexed
	// OutOfRange covers UUID successor overflow at the maximum UUID.
	OutOfRange
	// Io covers underlying file or KV engine failures.
	Io
	// Serialization covers encode/decode errors for the in-memory image.
	Serialization
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Unsupported:
		return "unsupported"
	case NotIndexed:
		return "not_indexed"
	case OutOfRange:
		return "out_of_range"
	case Io:
		return "io"
	case Serialization:
		return "serialization"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by every public operation in
// this module that can fail.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the inner cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Kind, so callers can
// do errors.Is(err, pgerr.New(pgerr.NotIndexed, "")) with an empty message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// New builds an *Error of the given kind with no wrapped cause.
func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// Wrap builds an *Error of the given kind wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// Validationf builds a Validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return New(Validation, fmt.Sprintf(format, args...))
}

// Unsupportedf builds an Unsupported error with a formatted message.
func Unsupportedf(format string, args ...any) *Error {
	return New(Unsupported, fmt.Sprintf(format, args...))
}

// NotIndexedf builds a NotIndexed error with a formatted message.
func NotIndexedf(format string, args ...any) *Error {
	return New(NotIndexed, fmt.Sprintf(format, args...))
}

// OutOfRangef builds an OutOfRange error with a formatted message.
func OutOfRangef(format string, args ...any) *Error {
	return New(OutOfRange, fmt.Sprintf(format, args...))
}

// Iof wraps cause as an Io error with a formatted message.
func Iof(cause error, format string, args ...any) *Error {
	return Wrap(Io, fmt.Sprintf(format, args...), cause)
}

// Serializationf wraps cause as a Serialization error with a formatted
// message.
func Serializationf(cause error, format string, args ...any) *Error {
	return Wrap(Serialization, fmt.Sprintf(format, args...), cause)
}

// KindOf extracts the Kind of err if it is (or wraps) a *Error, and reports
// whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
