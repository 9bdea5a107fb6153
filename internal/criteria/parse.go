package criteria

import (
	"fmt"
	"strings"

	"github.com/roach88/mapql/internal/value"
)

// Parse compiles a criteria mapping into a predicate tree.
//
// m may be a Map or a map[string]any. The result is an And group whose
// children follow the mapping's order. An empty mapping yields an empty
// group, which renders as no WHERE clause.
func Parse(m any) (*Group, error) {
	entries, ok := AsMap(m)
	if !ok {
		return nil, invalid("", "criteria must be a mapping, got %T", m)
	}
	root := &Group{Op: And}
	for _, e := range entries {
		node, err := parseEntry(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, node)
	}
	return root, nil
}

func parseEntry(key string, v any) (Node, error) {
	if op, ok := logicalOp(key); ok {
		return parseGroup(key, op, v)
	}

	ck := ParseKey(key)
	if ck.Column == "" {
		return nil, invalid(key, "missing column name")
	}

	tag := value.TagNone
	if ck.JSON {
		tag = value.TagJSON
	}
	isNull := value.IsNull(v)
	isSeq := isSequence(v)

	switch ck.Tag {
	case TagNone, TagNot:
		negate := ck.Tag == TagNot
		switch {
		case isNull:
			return Null{Column: ck.Column, Negate: negate}, nil
		case isSeq && !ck.JSON:
			values, err := encodeList(key, v)
			if err != nil {
				return nil, err
			}
			return In{Column: ck.Column, Values: values, Negate: negate}, nil
		}
		enc, err := encode(key, tag, v)
		if err != nil {
			return nil, err
		}
		op := OpEq
		if negate {
			op = OpNe
		}
		return Comparison{Column: ck.Column, Op: op, Value: enc}, nil

	case TagGT, TagGTE, TagLT, TagLTE:
		if isNull {
			return nil, invalid(key, "cannot order-compare with NULL")
		}
		if isSeq && !ck.JSON {
			return nil, invalid(key, "comparison needs a single value, got a list")
		}
		enc, err := encode(key, tag, v)
		if err != nil {
			return nil, err
		}
		return Comparison{Column: ck.Column, Op: orderOps[ck.Tag], Value: enc}, nil

	case TagBetween, TagNotBetween:
		if ck.JSON {
			return nil, invalid(key, "(JSON) cannot be combined with a range tag")
		}
		items := value.Elements(v)
		if !isSeq || len(items) != 2 {
			return nil, invalid(key, "range needs exactly two values [low, high], got %s", describe(v))
		}
		low, err := encode(key, value.TagNone, items[0])
		if err != nil {
			return nil, err
		}
		high, err := encode(key, value.TagNone, items[1])
		if err != nil {
			return nil, err
		}
		return Between{Column: ck.Column, Low: low, High: high, Negate: ck.Tag == TagNotBetween}, nil

	case TagLike, TagNotLike:
		if isNull {
			return nil, invalid(key, "LIKE pattern cannot be NULL")
		}
		raw := []any{v}
		if isSeq {
			raw = value.Elements(v)
			if len(raw) == 0 {
				return nil, invalid(key, "LIKE needs at least one pattern")
			}
		}
		patterns := make([]value.Encoded, 0, len(raw))
		for _, p := range raw {
			if tag == value.TagNone {
				p = wrapPattern(p)
			}
			enc, err := encode(key, tag, p)
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, enc)
		}
		return Like{Column: ck.Column, Patterns: patterns, Negate: ck.Tag == TagNotLike}, nil

	default:
		return nil, invalid(key, "tag %s is only valid in SET", ck.Tag)
	}
}

func parseGroup(key string, op LogicOp, v any) (Node, error) {
	entries, ok := AsMap(v)
	if !ok {
		return nil, invalid(key, "logical group must be a mapping, got %T", v)
	}
	if len(entries) == 0 {
		return nil, invalid(key, "logical group is empty")
	}
	g := &Group{Op: op}
	for _, e := range entries {
		child, err := parseEntry(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		g.Children = append(g.Children, child)
	}
	return g, nil
}

// ParseAssignments compiles an update mapping into SET assignments.
func ParseAssignments(m any) ([]Assignment, error) {
	entries, ok := AsMap(m)
	if !ok {
		return nil, invalid("", "update values must be a mapping, got %T", m)
	}
	if len(entries) == 0 {
		return nil, invalid("", "SET needs at least one column")
	}

	out := make([]Assignment, 0, len(entries))
	for _, e := range entries {
		ck, err := columnKey(e.Key)
		if err != nil {
			return nil, err
		}

		op := Assign
		switch {
		case ck.Tag == TagNone:
		case ck.Tag.IsArithmetic():
			if ck.JSON {
				return nil, invalid(e.Key, "(JSON) cannot be combined with an arithmetic tag")
			}
			if _, isExpr := e.Value.(value.Expr); !isExpr && !value.IsNumeric(e.Value) {
				return nil, invalid(e.Key, "arithmetic needs a numeric value, got %s", describe(e.Value))
			}
			op = arithOps[ck.Tag]
		default:
			return nil, invalid(e.Key, "tag %s is not valid in SET", ck.Tag)
		}

		enc, err := encode(e.Key, tagOf(ck), e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, Assignment{Column: ck.Column, Op: op, Value: enc})
	}
	return out, nil
}

// ParseValues compiles an insert mapping into column/value pairs.
// Only the (JSON) prefix is allowed on insert keys.
func ParseValues(m any) ([]Assignment, error) {
	entries, ok := AsMap(m)
	if !ok {
		return nil, invalid("", "insert values must be a mapping, got %T", m)
	}
	if len(entries) == 0 {
		return nil, invalid("", "INSERT needs at least one column")
	}

	out := make([]Assignment, 0, len(entries))
	for _, e := range entries {
		ck, err := columnKey(e.Key)
		if err != nil {
			return nil, err
		}
		if ck.Tag != TagNone {
			return nil, invalid(e.Key, "tag %s is not valid in INSERT", ck.Tag)
		}
		enc, err := encode(e.Key, tagOf(ck), e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, Assignment{Column: ck.Column, Value: enc})
	}
	return out, nil
}

var orderOps = map[Tag]CompareOp{
	TagGT:  OpGt,
	TagGTE: OpGte,
	TagLT:  OpLt,
	TagLTE: OpLte,
}

var arithOps = map[Tag]ArithOp{
	TagAdd:      Add,
	TagSubtract: Subtract,
	TagMultiply: Multiply,
	TagDivide:   Divide,
}

func columnKey(key string) (ColumnKey, error) {
	if IsLogicalKey(key) {
		return ColumnKey{}, invalid(key, "logical groups are only valid in WHERE")
	}
	ck := ParseKey(key)
	if ck.Column == "" {
		return ColumnKey{}, invalid(key, "missing column name")
	}
	return ck, nil
}

func tagOf(ck ColumnKey) value.Tag {
	if ck.JSON {
		return value.TagJSON
	}
	return value.TagNone
}

func encode(key string, tag value.Tag, v any) (value.Encoded, error) {
	enc, err := value.Encode(tag, v)
	if err != nil {
		return nil, fmt.Errorf("key %q: %w", key, err)
	}
	return enc, nil
}

func encodeList(key string, v any) ([]value.Encoded, error) {
	items := value.Elements(v)
	if len(items) == 0 {
		return nil, invalid(key, "IN list is empty")
	}
	out := make([]value.Encoded, 0, len(items))
	for _, item := range items {
		enc, err := encode(key, value.TagNone, item)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

// isSequence treats a nested Map as a structured object, not a list.
func isSequence(v any) bool {
	if _, ok := v.(Map); ok {
		return false
	}
	return value.IsSequence(v)
}

// wrapPattern surrounds a plain string with % wildcards unless it already
// contains % or _.
func wrapPattern(p any) any {
	s, ok := p.(string)
	if !ok || strings.ContainsAny(s, "%_") {
		return p
	}
	return "%" + s + "%"
}

func describe(v any) string {
	if isSequence(v) {
		return fmt.Sprintf("a list of %d", len(value.Elements(v)))
	}
	if value.IsNull(v) {
		return "NULL"
	}
	return fmt.Sprintf("%T", v)
}
