package sqlgen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/mapql/internal/criteria"
)

// Fragment is a rendered SQL fragment and its bound values.
type Fragment struct {
	SQL  string
	Args []any
}

// Direction is an ORDER BY direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// String returns "ASC" or "DESC".
func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// ParseDirection accepts "asc" / "desc" in any case. Empty means Asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return Asc, nil
	case "DESC":
		return Desc, nil
	default:
		return Asc, fmt.Errorf("invalid order direction %q", s)
	}
}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Dir    Direction
}

// Limit holds row-count and offset state. Pair is set when the offset came
// from the two-element limit form.
type Limit struct {
	Count     int64
	Offset    int64
	HasCount  bool
	HasOffset bool
	Pair      bool
}

// Compiler renders criteria for one dialect.
// It holds no per-statement state and may be shared.
type Compiler struct {
	Dialect Dialect
}

// NewCompiler creates a Compiler. A nil dialect means MySQL.
func NewCompiler(d Dialect) *Compiler {
	if d == nil {
		d = MySQL
	}
	return &Compiler{Dialect: d}
}

func (c *Compiler) dialect() Dialect {
	if c.Dialect == nil {
		return MySQL
	}
	return c.Dialect
}

// CompileWhere renders a criteria mapping as a WHERE body with its own
// placeholder sequence. An empty mapping renders "".
func (c *Compiler) CompileWhere(m any) (Fragment, error) {
	args := NewArgs(c.dialect(), false)
	sql, err := c.Where(args, m)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{SQL: sql, Args: args.Values()}, nil
}

// CompileSet renders an update mapping as a SET body.
func (c *Compiler) CompileSet(m any) (Fragment, error) {
	args := NewArgs(c.dialect(), false)
	sql, err := c.Set(args, m)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{SQL: sql, Args: args.Values()}, nil
}

// CompileOrder renders an ORDER BY clause, or "" for no terms.
func (c *Compiler) CompileOrder(terms ...Order) string {
	return c.Order(terms)
}

// CompileLimit renders the LIMIT/OFFSET clause, or "" if neither is set.
func (c *Compiler) CompileLimit(l Limit) string {
	return c.Limit(l)
}

// Where parses and renders a criteria mapping, binding operands to args.
func (c *Compiler) Where(args *Args, m any) (string, error) {
	root, err := criteria.Parse(m)
	if err != nil {
		return "", err
	}
	return c.WhereTree(args, root), nil
}

// WhereTree renders an already parsed criteria tree.
//
// The root's children are joined with AND. A logical group is wrapped in
// parentheses when it has siblings or sits inside another group, so a lone
// top-level group renders bare.
func (c *Compiler) WhereTree(args *Args, root *criteria.Group) string {
	if root == nil {
		return ""
	}
	return c.joinChildren(args, root, len(root.Children) > 1)
}

func (c *Compiler) joinChildren(args *Args, g *criteria.Group, wrapGroups bool) string {
	parts := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		parts = append(parts, c.renderNode(args, child, wrapGroups))
	}
	sep := " AND "
	if g.Op == criteria.Or {
		sep = " OR "
	}
	return strings.Join(parts, sep)
}

func (c *Compiler) renderNode(args *Args, n criteria.Node, wrapGroups bool) string {
	d := c.dialect()

	switch p := n.(type) {
	case *criteria.Group:
		inner := c.joinChildren(args, p, true)
		if wrapGroups && len(p.Children) > 1 {
			return "(" + inner + ")"
		}
		return inner

	case criteria.Comparison:
		return d.QuoteIdent(p.Column) + p.Op.String() + args.Bind(p.Value)

	case criteria.In:
		items := make([]string, len(p.Values))
		for i, v := range p.Values {
			items[i] = args.Bind(v)
		}
		op := " IN("
		if p.Negate {
			op = " NOT IN("
		}
		return d.QuoteIdent(p.Column) + op + strings.Join(items, ", ") + ")"

	case criteria.Between:
		op := " BETWEEN "
		if p.Negate {
			op = " NOT BETWEEN "
		}
		return d.QuoteIdent(p.Column) + op + args.Bind(p.Low) + " AND " + args.Bind(p.High)

	case criteria.Null:
		if p.Negate {
			return d.QuoteIdent(p.Column) + " IS NOT NULL"
		}
		return d.QuoteIdent(p.Column) + " IS NULL"

	case criteria.Like:
		op, sep := " LIKE ", " OR "
		if p.Negate {
			op, sep = " NOT LIKE ", " AND "
		}
		col := d.QuoteIdent(p.Column)
		terms := make([]string, len(p.Patterns))
		for i, pat := range p.Patterns {
			terms[i] = col + op + args.Bind(pat)
		}
		if len(terms) == 1 {
			return terms[0]
		}
		return "(" + strings.Join(terms, sep) + ")"

	default:
		// criteria.Node is sealed; every implementation is handled above.
		panic(fmt.Sprintf("sqlgen: unhandled criteria node %T", n))
	}
}

// Set parses and renders an update mapping.
func (c *Compiler) Set(args *Args, m any) (string, error) {
	assignments, err := criteria.ParseAssignments(m)
	if err != nil {
		return "", err
	}
	return c.SetAssignments(args, assignments), nil
}

// SetAssignments renders parsed assignments joined by ", ".
func (c *Compiler) SetAssignments(args *Args, assignments []criteria.Assignment) string {
	d := c.dialect()
	parts := make([]string, len(assignments))
	for i, a := range assignments {
		col := d.QuoteIdent(a.Column)
		if a.Op == criteria.Assign {
			parts[i] = col + "=" + args.Bind(a.Value)
			continue
		}
		parts[i] = col + "=(" + col + a.Op.Symbol() + args.Bind(a.Value) + ")"
	}
	return strings.Join(parts, ", ")
}

// Values parses and renders an insert mapping as
// "(`a`, `b`) VALUES (?, ?)".
func (c *Compiler) Values(args *Args, m any) (string, error) {
	pairs, err := criteria.ParseValues(m)
	if err != nil {
		return "", err
	}
	return c.ValuesList(args, pairs), nil
}

// ValuesList renders parsed insert pairs.
func (c *Compiler) ValuesList(args *Args, pairs []criteria.Assignment) string {
	d := c.dialect()
	cols := make([]string, len(pairs))
	vals := make([]string, len(pairs))
	for i, p := range pairs {
		cols[i] = d.QuoteIdent(p.Column)
		vals[i] = args.Bind(p.Value)
	}
	return "(" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(vals, ", ") + ")"
}

// Order renders "ORDER BY `a` ASC, `b` DESC".
func (c *Compiler) Order(terms []Order) string {
	if len(terms) == 0 {
		return ""
	}
	d := c.dialect()
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = d.QuoteIdent(t.Column) + " " + t.Dir.String()
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

// Limit renders the LIMIT/OFFSET clause.
func (c *Compiler) Limit(l Limit) string {
	d := c.dialect()
	count := strconv.FormatInt(l.Count, 10)
	offset := strconv.FormatInt(l.Offset, 10)

	switch {
	case l.HasCount && l.HasOffset && l.Pair && d.CommaLimit():
		return "LIMIT " + offset + ", " + count
	case l.HasCount && l.HasOffset:
		return "LIMIT " + count + " OFFSET " + offset
	case l.HasCount:
		return "LIMIT " + count
	case l.HasOffset:
		return d.OffsetOnly(l.Offset)
	default:
		return ""
	}
}

var aliasPattern = regexp.MustCompile(`^\s*([^()\s]+)\s*\(\s*([^()\s]+)\s*\)\s*$`)

// Columns renders a select list. "col(alias)" becomes "`col` AS `alias`"
// and an empty list becomes "*".
func (c *Compiler) Columns(columns []string) (string, error) {
	if len(columns) == 0 {
		return "*", nil
	}
	d := c.dialect()
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		if strings.TrimSpace(col) == "" {
			return "", &criteria.InvalidCriteriaError{Key: col, Reason: "empty column name"}
		}
		if m := aliasPattern.FindStringSubmatch(col); m != nil {
			parts = append(parts, d.QuoteIdent(m[1])+" AS "+d.QuoteIdent(m[2]))
			continue
		}
		if strings.ContainsAny(col, "()") {
			return "", &criteria.InvalidCriteriaError{Key: col, Reason: "malformed column alias"}
		}
		parts = append(parts, d.QuoteIdent(col))
	}
	return strings.Join(parts, ", "), nil
}

// Table quotes a table name.
func (c *Compiler) Table(name string) string {
	return c.dialect().QuoteIdent(name)
}
