package querydoc

import (
	"errors"
	"fmt"
)

// Error codes for document loading.
const (
	CodeReadFailed  = "E005" // file missing or unreadable
	CodeFormat      = "E201" // unsupported file extension
	CodeParse       = "E202" // YAML/JSON/CUE syntax or type error
	CodeInvalid     = "E203" // document fields invalid
	CodeCriteria    = "E204" // criteria rejected by the compiler
	CodeCUEEvaluate = "E205" // CUE value not concrete or failed to evaluate
)

// LoadError reports a document that could not be loaded.
type LoadError struct {
	Path    string
	Code    string
	Message string
	Line    int // 0 when unknown
	Err     error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.Path, e.Line, e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// CodeOf returns the LoadError code of err, or "" if err is not a LoadError.
func CodeOf(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}
