package query

import (
	"context"
	"strings"

	"github.com/roach88/mapql/internal/criteria"
	"github.com/roach88/mapql/internal/sqlgen"
	"github.com/roach88/mapql/internal/store"
)

// Builder assembles one statement through chained calls.
type Builder struct {
	compiler *sqlgen.Compiler
	bridge   *store.Bridge

	d   draft
	err error
}

// draft is the mutable state of the statement being built.
type draft struct {
	kind    store.Kind
	started bool

	table   string
	columns []string
	count   bool

	where   *criteria.Group
	set     []criteria.Assignment
	values  []criteria.Assignment
	hasSet  bool
	hasVals bool

	order []sqlgen.Order
	limit sqlgen.Limit
	raw   []fragment
}

type fragment struct {
	sql  string
	args []any
}

// Option configures a Builder.
type Option func(*Builder)

// WithDialect sets the quoting and placeholder style. Default: MySQL.
func WithDialect(d sqlgen.Dialect) Option {
	return func(b *Builder) {
		b.compiler = sqlgen.NewCompiler(d)
	}
}

// WithBridge sets the bridge Exec runs statements through.
func WithBridge(br *store.Bridge) Option {
	return func(b *Builder) {
		b.bridge = br
	}
}

// New creates an empty Builder.
func New(opts ...Option) *Builder {
	b := &Builder{compiler: sqlgen.NewCompiler(nil)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Err returns the held error, if any.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) start(kind store.Kind, table string) bool {
	if b.err != nil {
		return false
	}
	if b.d.started {
		b.fail(&StatementAlreadyStartedError{Current: b.d.kind, Requested: kind})
		return false
	}
	b.d.kind = kind
	b.d.started = true
	if table != "" {
		b.d.table = table
	}
	return true
}

// Select starts a SELECT of the given columns. No columns selects "*".
// A column may be "name", "table.name", "*" or "name(alias)".
func (b *Builder) Select(columns ...string) *Builder {
	if b.start(store.KindSelect, "") {
		b.d.columns = append([]string(nil), columns...)
	}
	return b
}

// SelectCount starts a SELECT COUNT(*).
func (b *Builder) SelectCount() *Builder {
	if b.start(store.KindSelect, "") {
		b.d.count = true
	}
	return b
}

// From sets the table of a SELECT.
func (b *Builder) From(table string) *Builder {
	if b.err != nil {
		return b
	}
	if b.d.started && b.d.kind != store.KindSelect {
		return b.fail(buildError("From", "FROM applies to SELECT, builder holds %s", b.d.kind))
	}
	b.d.table = table
	return b
}

// Insert starts an INSERT into table.
func (b *Builder) Insert(table string) *Builder {
	b.start(store.KindInsert, table)
	return b
}

// Values adds columns to an INSERT. Keys may carry the (JSON) prefix.
func (b *Builder) Values(m any) *Builder {
	if b.err != nil {
		return b
	}
	pairs, err := criteria.ParseValues(m)
	if err != nil {
		return b.fail(err)
	}
	b.d.values = append(b.d.values, pairs...)
	b.d.hasVals = true
	return b
}

// Update starts an UPDATE of table.
func (b *Builder) Update(table string) *Builder {
	b.start(store.KindUpdate, table)
	return b
}

// Set adds assignments to an UPDATE. Keys may carry [+] [-] [*] [/].
func (b *Builder) Set(m any) *Builder {
	if b.err != nil {
		return b
	}
	assignments, err := criteria.ParseAssignments(m)
	if err != nil {
		return b.fail(err)
	}
	b.d.set = append(b.d.set, assignments...)
	b.d.hasSet = true
	return b
}

// Delete starts a DELETE from table.
func (b *Builder) Delete(table string) *Builder {
	b.start(store.KindDelete, table)
	return b
}

// Where adds criteria. Repeated calls are combined with AND, in call order.
func (b *Builder) Where(m any) *Builder {
	if b.err != nil {
		return b
	}
	g, err := criteria.Parse(m)
	if err != nil {
		return b.fail(err)
	}
	if b.d.where == nil {
		b.d.where = g
		return b
	}
	b.d.where.Children = append(b.d.where.Children, g.Children...)
	return b
}

// Order appends an ORDER BY term.
func (b *Builder) Order(column string, dir sqlgen.Direction) *Builder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(column) == "" {
		return b.fail(buildError("Order", "empty column"))
	}
	b.d.order = append(b.d.order, sqlgen.Order{Column: column, Dir: dir})
	return b
}

// Limit sets the row count: Limit(n) or Limit(offset, n).
// The two-argument form replaces any offset set by Offset.
func (b *Builder) Limit(n ...int64) *Builder {
	if b.err != nil {
		return b
	}
	switch len(n) {
	case 1:
		if n[0] < 0 {
			return b.fail(buildError("Limit", "negative row count %d", n[0]))
		}
		b.d.limit.Count = n[0]
		b.d.limit.HasCount = true
	case 2:
		if n[0] < 0 || n[1] < 0 {
			return b.fail(buildError("Limit", "negative offset or row count [%d, %d]", n[0], n[1]))
		}
		b.d.limit = sqlgen.Limit{
			Offset:    n[0],
			Count:     n[1],
			HasCount:  true,
			HasOffset: true,
			Pair:      true,
		}
	default:
		return b.fail(buildError("Limit", "expected n or (offset, n), got %d arguments", len(n)))
	}
	return b
}

// Offset sets the offset. It replaces an offset given to Limit(offset, n).
func (b *Builder) Offset(n int64) *Builder {
	if b.err != nil {
		return b
	}
	if n < 0 {
		return b.fail(buildError("Offset", "negative offset %d", n))
	}
	b.d.limit.Offset = n
	b.d.limit.HasOffset = true
	b.d.limit.Pair = false
	return b
}

// SQL appends a raw fragment. The fragment is not escaped; ? marks in it
// bind args. Without a statement kind the fragments are the whole
// statement.
func (b *Builder) SQL(fragmentSQL string, args ...any) *Builder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(fragmentSQL) == "" {
		return b.fail(buildError("SQL", "empty fragment"))
	}
	b.d.raw = append(b.d.raw, fragment{sql: fragmentSQL, args: args})
	return b
}

// Clear resets the draft and the held error.
func (b *Builder) Clear() *Builder {
	b.d = draft{}
	b.err = nil
	return b
}

// Compile compiles the draft into a Statement with placeholders.
func (b *Builder) Compile() (Statement, error) {
	return b.compile(false)
}

// Query returns the statement text with literals in place of
// placeholders. The text is for display and logging; Exec always binds.
func (b *Builder) Query() (string, error) {
	stmt, err := b.compile(true)
	if err != nil {
		return "", err
	}
	return stmt.SQL(), nil
}

// Exec compiles the draft and runs it through the bridge.
func (b *Builder) Exec(ctx context.Context) (store.Result, error) {
	return b.exec(ctx, store.FetchAll)
}

// ExecOne runs a SELECT and returns its first row, or nil if there is none.
func (b *Builder) ExecOne(ctx context.Context) (store.Row, error) {
	res, err := b.exec(ctx, store.FetchOne)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, nil
	}
	return res.Rows[0], nil
}

func (b *Builder) exec(ctx context.Context, mode store.FetchMode) (store.Result, error) {
	stmt, err := b.Compile()
	if err != nil {
		return store.Result{}, err
	}
	if b.bridge == nil {
		return store.Result{}, buildError("Exec", "no bridge configured")
	}

	kind := stmt.Kind()
	if kind == store.KindRaw && isSelect(stmt.SQL()) {
		kind = store.KindSelect
	}
	if mode == store.FetchOne && kind != store.KindSelect {
		return store.Result{}, buildError("ExecOne", "statement is %s, not SELECT", kind)
	}
	return b.bridge.Run(ctx, kind, stmt.SQL(), stmt.Args(), mode)
}

func isSelect(sqlText string) bool {
	s := strings.ToUpper(strings.TrimSpace(sqlText))
	return strings.HasPrefix(s, "SELECT") || strings.HasPrefix(s, "WITH")
}
