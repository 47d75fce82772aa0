package varexport

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUnsupportedType is returned when a Go value has no var_export
	// representation, like channels, functions or complex numbers.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrInvalidUTF8 is returned by MarshalString when the encoded output
	// is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("output is not valid UTF-8")
)

// Error is the only error kind produced while encoding.
// It carries a human readable message and, when the failure comes
// from the sink or from a value, the underlying cause.
type Error struct {
	Msg string
	Err error
}

// Errorf creates an Error from a format string.
// It is meant to be used by Marshaler implementations to report
// that a value cannot be described.
func Errorf(format string, args ...any) error {
	return errors.WithStack(&Error{Msg: fmt.Sprintf(format, args...)})
}

func newError(err error, msg string) error {
	return errors.WithStack(&Error{Msg: msg, Err: err})
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

// Unwrap returns the cause of the error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}
