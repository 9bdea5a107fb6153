package criteria

import (
	"errors"
	"fmt"
)

// CodeInvalidCriteria identifies InvalidCriteriaError in diagnostics.
const CodeInvalidCriteria = "INVALID_CRITERIA"

// InvalidCriteriaError reports a criteria entry that cannot be compiled:
// wrong arity for BETWEEN, an empty IN list, a tag used out of context, or
// a malformed logical group.
type InvalidCriteriaError struct {
	// Key is the offending mapping key as written by the caller.
	Key string

	// Reason is a human-readable description.
	Reason string
}

// Error implements the error interface.
func (e *InvalidCriteriaError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %s", CodeInvalidCriteria, e.Reason)
	}
	return fmt.Sprintf("%s: %q: %s", CodeInvalidCriteria, e.Key, e.Reason)
}

// IsInvalid reports whether err is or wraps an InvalidCriteriaError.
func IsInvalid(err error) bool {
	var ie *InvalidCriteriaError
	return errors.As(err, &ie)
}

func invalid(key, format string, args ...any) *InvalidCriteriaError {
	return &InvalidCriteriaError{Key: key, Reason: fmt.Sprintf(format, args...)}
}
