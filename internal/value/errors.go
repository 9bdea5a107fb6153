package value

import (
	"errors"
	"fmt"
)

// CodeEncoding identifies EncodingError in diagnostics.
const CodeEncoding = "ENCODING_ERROR"

// EncodingError reports a value that cannot be represented in a statement:
// a cyclic structure, a channel or func, or a driver.Valuer that failed.
type EncodingError struct {
	// Type is the Go type of the offending value.
	Type string

	// Reason is a human-readable description.
	Reason string

	// Err is the underlying serializer error, if any.
	Err error
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s): %v", CodeEncoding, e.Reason, e.Type, e.Err)
	}
	return fmt.Sprintf("%s: %s (%s)", CodeEncoding, e.Reason, e.Type)
}

// Unwrap returns the underlying error.
func (e *EncodingError) Unwrap() error {
	return e.Err
}

// IsEncodingError reports whether err is or wraps an EncodingError.
func IsEncodingError(err error) bool {
	var ee *EncodingError
	return errors.As(err, &ee)
}

func encodingError(v any, reason string, err error) *EncodingError {
	return &EncodingError{Type: fmt.Sprintf("%T", v), Reason: reason, Err: err}
}
