package query

import (
	"errors"
	"fmt"

	"github.com/roach88/mapql/internal/store"
)

// Error codes for builder errors.
const (
	// CodeAlreadyStarted indicates a second statement-kind call without Clear.
	CodeAlreadyStarted = "STATEMENT_ALREADY_STARTED"

	// CodeBuild indicates an incomplete or inconsistent statement draft.
	CodeBuild = "BUILD_ERROR"
)

// StatementAlreadyStartedError is returned when Select, Insert, Update or
// Delete is called on a builder that already has a statement kind.
type StatementAlreadyStartedError struct {
	Current   store.Kind
	Requested store.Kind
}

// Error implements the error interface.
func (e *StatementAlreadyStartedError) Error() string {
	return fmt.Sprintf("%s: cannot start %s, builder already holds a %s statement (call Clear first)",
		CodeAlreadyStarted, e.Requested, e.Current)
}

// BuildError reports a draft that cannot be compiled or executed.
type BuildError struct {
	// Op is the builder method or phase that failed.
	Op string

	// Reason is a human-readable description.
	Reason string
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %s: %s", CodeBuild, e.Op, e.Reason)
}

// IsAlreadyStarted returns true if err is or wraps a
// StatementAlreadyStartedError.
func IsAlreadyStarted(err error) bool {
	var se *StatementAlreadyStartedError
	return errors.As(err, &se)
}

// IsBuildError returns true if err is or wraps a BuildError.
func IsBuildError(err error) bool {
	var be *BuildError
	return errors.As(err, &be)
}

func buildError(op, format string, args ...any) *BuildError {
	return &BuildError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
