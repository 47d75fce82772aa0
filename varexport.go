package varexport

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Marshal returns the var_export representation of v.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalString returns the var_export representation of v as a string.
// It fails if the output is not valid UTF-8, which can only happen
// when v holds strings that are not valid UTF-8.
func MarshalString(v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", newError(errors.WithStack(ErrInvalidUTF8), "")
	}
	return string(data), nil
}

// MarshalTo writes the var_export representation of v to w.
// Bytes written before a failure are not rolled back.
func MarshalTo(w io.Writer, v any) error {
	return NewEncoder(w).Encode(v)
}
