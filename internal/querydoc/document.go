package querydoc

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mapql/internal/criteria"
	"github.com/roach88/mapql/internal/query"
	"github.com/roach88/mapql/internal/sqlgen"
)

// Statement kinds accepted in the kind field.
const (
	KindSelect = "select"
	KindCount  = "count"
	KindInsert = "insert"
	KindUpdate = "update"
	KindDelete = "delete"
)

// Document describes one statement.
type Document struct {
	// Name labels the document in output. Optional.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Kind is one of select, count, insert, update, delete.
	Kind string `yaml:"kind" json:"kind"`

	// Table is the target table.
	Table string `yaml:"table" json:"table"`

	// Columns is the SELECT list. Empty selects "*".
	Columns []string `yaml:"columns,omitempty" json:"columns,omitempty"`

	// Where is the criteria mapping.
	Where criteria.Map `yaml:"where,omitempty" json:"where,omitempty"`

	// Set is the UPDATE mapping.
	Set criteria.Map `yaml:"set,omitempty" json:"set,omitempty"`

	// Values is the INSERT mapping.
	Values criteria.Map `yaml:"values,omitempty" json:"values,omitempty"`

	// Order lists ORDER BY terms in order.
	Order []OrderTerm `yaml:"order,omitempty" json:"order,omitempty"`

	// Limit is a row count or an [offset, count] pair.
	Limit *LimitSpec `yaml:"limit,omitempty" json:"limit,omitempty"`

	// Offset skips rows. It replaces the offset of a pair limit.
	Offset *int64 `yaml:"offset,omitempty" json:"offset,omitempty"`

	// Source is the path or name the document was parsed from.
	Source string `yaml:"-" json:"-"`
}

// OrderTerm is one ORDER BY entry.
type OrderTerm struct {
	Column    string `yaml:"column" json:"column"`
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty"`
}

// LimitSpec is either a count ("limit: 10") or a pair ("limit: [20, 10]").
type LimitSpec struct {
	Offset int64
	Count  int64
	Pair   bool
}

// UnmarshalYAML accepts an integer or a two-element sequence.
func (l *LimitSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var n int64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("line %d: limit must be an integer or [offset, count]", node.Line)
		}
		*l = LimitSpec{Count: n}
		return nil
	case yaml.SequenceNode:
		var pair []int64
		if err := node.Decode(&pair); err != nil || len(pair) != 2 {
			return fmt.Errorf("line %d: limit pair must be [offset, count]", node.Line)
		}
		*l = LimitSpec{Offset: pair[0], Count: pair[1], Pair: true}
		return nil
	default:
		return fmt.Errorf("line %d: limit must be an integer or [offset, count]", node.Line)
	}
}

// UnmarshalJSON accepts a number or a two-element array.
func (l *LimitSpec) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*l = LimitSpec{Count: n}
		return nil
	}
	var pair []int64
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) != 2 {
		return fmt.Errorf("limit must be an integer or [offset, count]")
	}
	*l = LimitSpec{Offset: pair[0], Count: pair[1], Pair: true}
	return nil
}

// MarshalJSON writes the count or the pair.
func (l LimitSpec) MarshalJSON() ([]byte, error) {
	if l.Pair {
		return json.Marshal([]int64{l.Offset, l.Count})
	}
	return json.Marshal(l.Count)
}

// Validate checks fields that do not depend on criteria parsing.
func (d *Document) Validate() error {
	kind := strings.ToLower(strings.TrimSpace(d.Kind))
	switch kind {
	case KindSelect, KindCount, KindInsert, KindUpdate, KindDelete:
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("unknown kind %q (want select, count, insert, update or delete)", d.Kind)
	}
	if strings.TrimSpace(d.Table) == "" {
		return fmt.Errorf("table is required")
	}
	if kind == KindInsert && len(d.Values) == 0 {
		return fmt.Errorf("insert needs values")
	}
	if kind == KindUpdate && len(d.Set) == 0 {
		return fmt.Errorf("update needs set")
	}
	if len(d.Columns) > 0 && kind != KindSelect {
		return fmt.Errorf("columns apply to select, not %s", kind)
	}
	for i, o := range d.Order {
		if strings.TrimSpace(o.Column) == "" {
			return fmt.Errorf("order[%d]: column is required", i)
		}
		if _, err := sqlgen.ParseDirection(o.Direction); err != nil {
			return fmt.Errorf("order[%d]: %w", i, err)
		}
	}
	return nil
}

// Build applies the document to a new Builder. Errors in the criteria are
// held by the Builder and returned by its terminal call.
func (d *Document) Build(opts ...query.Option) *query.Builder {
	b := query.New(opts...)

	switch strings.ToLower(strings.TrimSpace(d.Kind)) {
	case KindSelect:
		b.Select(d.Columns...).From(d.Table)
	case KindCount:
		b.SelectCount().From(d.Table)
	case KindInsert:
		b.Insert(d.Table)
	case KindUpdate:
		b.Update(d.Table)
	case KindDelete:
		b.Delete(d.Table)
	}

	// The builder rejects values or set on the wrong kind.
	if d.Values != nil {
		b.Values(d.Values)
	}
	if d.Set != nil {
		b.Set(d.Set)
	}

	if d.Where != nil {
		b.Where(d.Where)
	}
	for _, o := range d.Order {
		dir, _ := sqlgen.ParseDirection(o.Direction)
		b.Order(o.Column, dir)
	}
	if d.Limit != nil {
		if d.Limit.Pair {
			b.Limit(d.Limit.Offset, d.Limit.Count)
		} else {
			b.Limit(d.Limit.Count)
		}
	}
	if d.Offset != nil {
		b.Offset(*d.Offset)
	}
	return b
}

// Compile builds the statement with placeholders. Criteria errors come
// back as a *LoadError with CodeCriteria.
func (d *Document) Compile(opts ...query.Option) (query.Statement, error) {
	stmt, err := d.Build(opts...).Compile()
	if err != nil {
		return query.Statement{}, d.criteriaError(err)
	}
	return stmt, nil
}

// Inline returns the statement text with literals in place of placeholders.
func (d *Document) Inline(opts ...query.Option) (string, error) {
	text, err := d.Build(opts...).Query()
	if err != nil {
		return "", d.criteriaError(err)
	}
	return text, nil
}

func (d *Document) criteriaError(err error) error {
	return &LoadError{Path: d.Source, Code: CodeCriteria, Message: err.Error(), Err: err}
}
