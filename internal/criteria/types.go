package criteria

import "github.com/roach88/mapql/internal/value"

// Node is an element of a compiled criteria tree.
//
// This is a sealed interface - only types in this package implement it.
// Node types:
//   - Comparison: column <op> value
//   - Between: column [NOT] BETWEEN low AND high
//   - In: column [NOT] IN (values)
//   - Null: column IS [NOT] NULL
//   - Like: column [NOT] LIKE pattern, one or more patterns
//   - Group: children joined by AND or OR
type Node interface {
	criteriaNode() // Marker method - seals interface to this package
}

// CompareOp is the operator of a Comparison.
type CompareOp int

const (
	OpEq  CompareOp = iota // =
	OpNe                   // !=
	OpGt                   // >
	OpGte                  // >=
	OpLt                   // <
	OpLte                  // <=
)

// String returns the SQL spelling of the operator.
func (op CompareOp) String() string {
	switch op {
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	default:
		return "="
	}
}

// Comparison compares a column with a single operand.
//
// Covers Equals, NotEquals, GreaterThan, GreaterOrEqual, LessThan and
// LessOrEqual.
type Comparison struct {
	Column string
	Op     CompareOp
	Value  value.Encoded
}

func (Comparison) criteriaNode() {}

// Between is an inclusive range test. Negate selects NOT BETWEEN.
type Between struct {
	Column string
	Low    value.Encoded
	High   value.Encoded
	Negate bool
}

func (Between) criteriaNode() {}

// In tests membership in a non-empty list. Negate selects NOT IN.
type In struct {
	Column string
	Values []value.Encoded
	Negate bool
}

func (In) criteriaNode() {}

// Null tests for NULL. Negate selects IS NOT NULL.
type Null struct {
	Column string
	Negate bool
}

func (Null) criteriaNode() {}

// Like matches one or more patterns. Several patterns are joined with OR,
// or with AND when Negate selects NOT LIKE.
type Like struct {
	Column   string
	Patterns []value.Encoded
	Negate   bool
}

func (Like) criteriaNode() {}

// LogicOp is the connective of a Group.
type LogicOp int

const (
	And LogicOp = iota
	Or
)

// String returns "AND" or "OR".
func (op LogicOp) String() string {
	if op == Or {
		return "OR"
	}
	return "AND"
}

// Group joins its children with Op, in declaration order.
//
// The root of a parsed mapping is an And group. Nested groups come from
// "AND"/"OR" keys.
type Group struct {
	Op       LogicOp
	Children []Node
}

func (*Group) criteriaNode() {}

// ArithOp is the operator of an Assignment.
type ArithOp int

const (
	Assign ArithOp = iota
	Add
	Subtract
	Multiply
	Divide
)

// Symbol returns the SQL operator for arithmetic assignments, or "" for Assign.
func (op ArithOp) Symbol() string {
	switch op {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return ""
	}
}

// Assignment is one column update in a SET list or one column of an
// INSERT value list.
type Assignment struct {
	Column string
	Op     ArithOp
	Value  value.Encoded
}
