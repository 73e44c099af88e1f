// Package errs defines the error kinds the stint engine reports to callers.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindUnknown        Kind = "UNKNOWN"
	KindValidation     Kind = "VALIDATION"
	KindType           Kind = "TYPE"
	KindValue          Kind = "VALUE"
	KindInvalidStatus  Kind = "INVALID_STATUS"
	KindAlreadyStarted Kind = "ALREADY_STARTED"
	KindNotStarted     Kind = "NOT_STARTED"
	KindScope          Kind = "SCOPE"
	KindInvariant      Kind = "INVARIANT"
	KindTransport      Kind = "TRANSPORT"
	KindPanic          Kind = "PANIC"
)

// Error is an engine error of a given kind, optionally wrapping a cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err == nil:
		return string(e.Kind)
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the Err* sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrType           = &Error{Kind: KindType}
	ErrValue          = &Error{Kind: KindValue}
	ErrInvalidStatus  = &Error{Kind: KindInvalidStatus}
	ErrAlreadyStarted = &Error{Kind: KindAlreadyStarted}
	ErrNotStarted     = &Error{Kind: KindNotStarted}
	ErrScope          = &Error{Kind: KindScope}
	ErrInvariant      = &Error{Kind: KindInvariant}
	ErrTransport      = &Error{Kind: KindTransport}
	ErrPanic          = &Error{Kind: KindPanic}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error    { return newf(KindValidation, format, args...) }
func Type(format string, args ...any) error          { return newf(KindType, format, args...) }
func Value(format string, args ...any) error         { return newf(KindValue, format, args...) }
func InvalidStatus(format string, args ...any) error { return newf(KindInvalidStatus, format, args...) }
func AlreadyStarted(format string, args ...any) error {
	return newf(KindAlreadyStarted, format, args...)
}
func NotStarted(format string, args ...any) error { return newf(KindNotStarted, format, args...) }
func Scope(format string, args ...any) error      { return newf(KindScope, format, args...) }
func Invariant(format string, args ...any) error  { return newf(KindInvariant, format, args...) }
func Panic(format string, args ...any) error      { return newf(KindPanic, format, args...) }

// Transport wraps a failed external signal call.
func Transport(err error, format string, args ...any) error {
	return &Error{Kind: KindTransport, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from any error. Returns KindUnknown if err is not an
// engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
