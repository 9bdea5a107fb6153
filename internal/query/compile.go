package query

import (
	"strings"

	"github.com/roach88/mapql/internal/sqlgen"
	"github.com/roach88/mapql/internal/store"
)

// compile renders the draft. With inline set, operands are rendered as
// literals and the Statement carries no args.
func (b *Builder) compile(inline bool) (Statement, error) {
	if b.err != nil {
		return Statement{}, b.err
	}

	d := &b.d
	c := b.compiler
	args := sqlgen.NewArgs(c.Dialect, inline)

	kind := d.kind
	if !d.started && d.table != "" {
		kind = store.KindSelect
	}
	if !d.started && d.table == "" {
		return b.compileRaw(args)
	}

	if strings.TrimSpace(d.table) == "" {
		return Statement{}, buildError("Compile", "%s needs a table", kind)
	}
	if err := d.check(kind); err != nil {
		return Statement{}, err
	}

	var parts []string
	table := c.Table(d.table)

	switch kind {
	case store.KindSelect:
		cols := "COUNT(*)"
		if !d.count {
			var err error
			if cols, err = c.Columns(d.columns); err != nil {
				return Statement{}, err
			}
		}
		parts = append(parts, "SELECT "+cols+" FROM "+table)

	case store.KindInsert:
		parts = append(parts, "INSERT INTO "+table+" "+c.ValuesList(args, d.values))

	case store.KindUpdate:
		parts = append(parts, "UPDATE "+table+" SET "+c.SetAssignments(args, d.set))

	case store.KindDelete:
		parts = append(parts, "DELETE FROM "+table)
	}

	if where := c.WhereTree(args, d.where); where != "" {
		parts = append(parts, "WHERE "+where)
	}
	if order := c.Order(d.order); order != "" {
		parts = append(parts, order)
	}
	if limit := c.Limit(d.limit); limit != "" {
		parts = append(parts, limit)
	}

	raw, err := bindRaw(args, d.raw)
	if err != nil {
		return Statement{}, err
	}
	parts = append(parts, raw...)

	return Statement{sql: strings.Join(parts, " "), args: args.Values(), kind: kind}, nil
}

func (b *Builder) compileRaw(args *sqlgen.Args) (Statement, error) {
	d := &b.d
	if len(d.raw) == 0 {
		return Statement{}, buildError("Compile", "empty statement")
	}
	if d.where != nil || len(d.order) > 0 || d.limit.HasCount || d.limit.HasOffset || d.hasSet || d.hasVals {
		return Statement{}, buildError("Compile", "criteria need a statement kind and table")
	}
	raw, err := bindRaw(args, d.raw)
	if err != nil {
		return Statement{}, err
	}
	return Statement{sql: strings.Join(raw, " "), args: args.Values(), kind: store.KindRaw}, nil
}

func bindRaw(args *sqlgen.Args, raw []fragment) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		s, err := args.BindFragment(f.sql, f.args)
		if err != nil {
			return nil, buildError("SQL", "%v", err)
		}
		out = append(out, s)
	}
	return out, nil
}

// check rejects clauses that do not belong to kind.
func (d *draft) check(kind store.Kind) error {
	switch kind {
	case store.KindInsert:
		if !d.hasVals {
			return buildError("Compile", "INSERT needs Values")
		}
		if d.where != nil || len(d.order) > 0 || d.limit.HasCount || d.limit.HasOffset {
			return buildError("Compile", "INSERT does not take WHERE, ORDER BY or LIMIT")
		}
	case store.KindUpdate:
		if !d.hasSet {
			return buildError("Compile", "UPDATE needs Set")
		}
	}
	if d.hasSet && kind != store.KindUpdate {
		return buildError("Compile", "Set applies to UPDATE, builder holds %s", kind)
	}
	if d.hasVals && kind != store.KindInsert {
		return buildError("Compile", "Values applies to INSERT, builder holds %s", kind)
	}
	if len(d.columns) > 0 && kind != store.KindSelect {
		return buildError("Compile", "columns apply to SELECT, builder holds %s", kind)
	}
	return nil
}
