package sqlgen

import (
	"fmt"
	"strings"

	"github.com/roach88/mapql/internal/value"
)

// Args collects bound values for one statement.
//
// Placeholders are numbered across every fragment bound through the same
// Args, so WHERE and SET parts of one statement share a sequence. In inline
// mode nothing is collected and operands are rendered as literals instead.
type Args struct {
	dialect Dialect
	inline  bool
	values  []any
}

// NewArgs creates a binder for d. A nil dialect means MySQL.
func NewArgs(d Dialect, inline bool) *Args {
	if d == nil {
		d = MySQL
	}
	return &Args{dialect: d, inline: inline}
}

// Bind records e and returns the text that stands for it in the statement.
// Expressions are always written verbatim.
func (a *Args) Bind(e value.Encoded) string {
	if expr, ok := e.(value.Expr); ok {
		return string(expr)
	}
	if a.inline {
		return value.Literal(e, a.dialect.QuoteString)
	}
	a.values = append(a.values, e.Arg())
	return a.dialect.Placeholder(len(a.values))
}

// BindFragment rewrites each ? in a raw SQL fragment to a bound operand.
// Question marks inside quoted strings or identifiers are left alone. When
// the dialect uses backslash escapes, an escaped quote does not end a string.
func (a *Args) BindFragment(fragment string, args []any) (string, error) {
	var (
		out   strings.Builder
		quote byte
		used  int
	)
	for i := 0; i < len(fragment); i++ {
		ch := fragment[i]
		switch {
		case quote != 0:
			if ch == '\\' && quote != '`' && a.dialect.BackslashEscapes() && i+1 < len(fragment) {
				out.WriteByte(ch)
				i++
				out.WriteByte(fragment[i])
				continue
			}
			if ch == quote {
				quote = 0
			}
			out.WriteByte(ch)
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
			out.WriteByte(ch)
		case ch == '?':
			if used >= len(args) {
				return "", fmt.Errorf("sql fragment has more placeholders than args (%d)", len(args))
			}
			enc, err := value.Encode(value.TagNone, args[used])
			if err != nil {
				return "", fmt.Errorf("sql fragment arg %d: %w", used+1, err)
			}
			out.WriteString(a.Bind(enc))
			used++
		default:
			out.WriteByte(ch)
		}
	}
	if used != len(args) {
		return "", fmt.Errorf("sql fragment has %d placeholders but %d args", used, len(args))
	}
	return out.String(), nil
}

// Values returns a copy of the bound values in placeholder order.
func (a *Args) Values() []any {
	if len(a.values) == 0 {
		return nil
	}
	out := make([]any, len(a.values))
	copy(out, a.values)
	return out
}

// Len returns the number of bound values.
func (a *Args) Len() int { return len(a.values) }

// Inline reports whether operands are rendered as literals.
func (a *Args) Inline() bool { return a.inline }

// Dialect returns the dialect placeholders are rendered for.
func (a *Args) Dialect() Dialect { return a.dialect }
