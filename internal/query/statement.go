package query

import "github.com/roach88/mapql/internal/store"

// Statement is a compiled statement: SQL text with placeholders and the
// values bound to them, in order. A Statement is never mutated.
type Statement struct {
	sql  string
	args []any
	kind store.Kind
}

// SQL returns the statement text.
func (s Statement) SQL() string { return s.sql }

// Args returns a copy of the bound values.
func (s Statement) Args() []any {
	if len(s.args) == 0 {
		return nil
	}
	out := make([]any, len(s.args))
	copy(out, s.args)
	return out
}

// Kind returns the statement kind.
func (s Statement) Kind() store.Kind { return s.kind }

// String returns the statement text.
func (s Statement) String() string { return s.sql }
