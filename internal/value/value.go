package value

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Tag selects how a value is encoded. It is derived from the key prefix in a
// criteria mapping.
type Tag int

const (
	// TagNone encodes scalars as Raw and structured values as Serialized.
	TagNone Tag = iota
	// TagJSON encodes the whole value as JSON text.
	TagJSON
)

// String returns the prefix spelling of the tag.
func (t Tag) String() string {
	switch t {
	case TagJSON:
		return "(JSON)"
	default:
		return ""
	}
}

// Encoded is a sealed interface over the forms an operand can take.
// Only Raw, JSON, Serialized and Expr implement it.
type Encoded interface {
	encoded()

	// Arg returns the value bound to a placeholder.
	// Expr returns nil; it is never bound.
	Arg() any
}

// Raw is a normalized scalar.
type Raw struct {
	V any
}

func (Raw) encoded() {}

// Arg returns the scalar.
func (r Raw) Arg() any { return r.V }

// IsNull reports whether the scalar is SQL NULL.
func (r Raw) IsNull() bool { return r.V == nil }

// JSON is a value encoded as JSON text.
type JSON struct {
	Text string
}

func (JSON) encoded() {}

// Arg returns the JSON text.
func (j JSON) Arg() any { return j.Text }

// Serialized is a structured value encoded with the generic YAML format.
type Serialized struct {
	Text string
}

func (Serialized) encoded() {}

// Arg returns the serialized text.
func (s Serialized) Arg() any { return s.Text }

// Expr is a raw SQL expression. It is written into the statement unescaped,
// so it must never carry caller-supplied data.
type Expr string

func (Expr) encoded() {}

// Arg returns nil; expressions are inlined, not bound.
func (Expr) Arg() any { return nil }

// Null is the encoded SQL NULL.
var Null = Raw{}

// TimeLayout is the layout used to render time.Time literals.
const TimeLayout = "2006-01-02 15:04:05"

// Literal renders e as SQL literal text. quote escapes and quotes a string
// for the target dialect.
//
// Literal output is for display only; execution always binds Arg.
func Literal(e Encoded, quote func(string) string) string {
	switch v := e.(type) {
	case Raw:
		return scalarLiteral(v.V, quote)
	case JSON:
		return quote(v.Text)
	case Serialized:
		return quote(v.Text)
	case Expr:
		return string(v)
	default:
		return "NULL"
	}
}

func scalarLiteral(v any, quote func(string) string) string {
	switch s := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(s, 10)
	case uint64:
		return strconv.FormatUint(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	case string:
		return quote(s)
	case []byte:
		return "X'" + hex.EncodeToString(s) + "'"
	case time.Time:
		return quote(s.Format(TimeLayout))
	default:
		return quote(fmt.Sprint(s))
	}
}
