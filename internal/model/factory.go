package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/mapql/internal/criteria"
	"github.com/roach88/mapql/internal/query"
	"github.com/roach88/mapql/internal/sqlgen"
	"github.com/roach88/mapql/internal/store"
)

// ErrNotFound is returned when a finder or write matches no row.
var ErrNotFound = errors.New("record not found")

// KeyStrategy selects how primary keys are produced on insert.
type KeyStrategy int

const (
	// AutoIncrement reads the key the database generated.
	AutoIncrement KeyStrategy = iota
	// UUID generates a key before insert.
	UUID
)

// Config describes the table a Factory maps.
type Config struct {
	// Table is the table name. FactoryFor derives it when empty.
	Table string

	// PrimaryKey is the key column. Default: "id".
	PrimaryKey string

	// Keys is the key strategy. Default: AutoIncrement.
	Keys KeyStrategy

	// IDs generates keys for the UUID strategy. Default: UUIDv7Generator.
	IDs IDGenerator

	// Dialect overrides the dialect derived from the bridge's driver.
	Dialect sqlgen.Dialect
}

// Factory runs finders and writes for one table.
type Factory struct {
	bridge *store.Bridge
	cfg    Config
}

// NewFactory creates a Factory for cfg.Table.
func NewFactory(bridge *store.Bridge, cfg Config) (*Factory, error) {
	if bridge == nil {
		return nil, errors.New("model: bridge is required")
	}
	if cfg.Table == "" {
		return nil, errors.New("model: table is required")
	}
	if cfg.PrimaryKey == "" {
		cfg.PrimaryKey = "id"
	}
	if cfg.Keys == UUID && cfg.IDs == nil {
		cfg.IDs = UUIDv7Generator{}
	}
	if cfg.Dialect == nil {
		d, err := sqlgen.DialectFor(bridge.Driver())
		if err != nil {
			d = sqlgen.MySQL
		}
		cfg.Dialect = d
	}
	return &Factory{bridge: bridge, cfg: cfg}, nil
}

// FactoryFor creates a Factory whose table defaults to TableName of T.
func FactoryFor[T any](bridge *store.Bridge, cfg Config) (*Factory, error) {
	if cfg.Table == "" {
		cfg.Table = tableNameOf[T]()
	}
	return NewFactory(bridge, cfg)
}

// Table returns the mapped table name.
func (f *Factory) Table() string { return f.cfg.Table }

// PrimaryKey returns the key column name.
func (f *Factory) PrimaryKey() string { return f.cfg.PrimaryKey }

func (f *Factory) q() *query.Builder {
	return query.New(query.WithDialect(f.cfg.Dialect), query.WithBridge(f.bridge))
}

func (f *Factory) pkWhere(id any) criteria.Map {
	return criteria.M(f.cfg.PrimaryKey, id)
}

// New returns an unsaved record.
func (f *Factory) New() *Record {
	return newRecord(f.cfg.PrimaryKey)
}

// Find loads the record with the given primary key.
func (f *Factory) Find(ctx context.Context, id any) (*Record, error) {
	return f.FindOne(ctx, f.pkWhere(id))
}

// FindOne loads the first record matching where.
func (f *Factory) FindOne(ctx context.Context, where any) (*Record, error) {
	b := f.q().Select().From(f.cfg.Table)
	if where != nil {
		b.Where(where)
	}
	row, err := b.Limit(1).ExecOne(ctx)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", f.cfg.Table, err)
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return recordFromRow(f.cfg.PrimaryKey, row), nil
}

// FindOption adjusts FindAll.
type FindOption func(*query.Builder)

// OrderBy appends an ORDER BY term.
func OrderBy(column string, dir sqlgen.Direction) FindOption {
	return func(b *query.Builder) { b.Order(column, dir) }
}

// Limit caps the number of records.
func Limit(n int64) FindOption {
	return func(b *query.Builder) { b.Limit(n) }
}

// Offset skips the first n records.
func Offset(n int64) FindOption {
	return func(b *query.Builder) { b.Offset(n) }
}

// FindAll loads every record matching where. A nil where matches all rows.
func (f *Factory) FindAll(ctx context.Context, where any, opts ...FindOption) ([]*Record, error) {
	b := f.q().Select().From(f.cfg.Table)
	if where != nil {
		b.Where(where)
	}
	for _, opt := range opts {
		opt(b)
	}

	res, err := b.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("find all in %s: %w", f.cfg.Table, err)
	}

	records := make([]*Record, len(res.Rows))
	for i, row := range res.Rows {
		records[i] = recordFromRow(f.cfg.PrimaryKey, row)
	}
	return records, nil
}

// Count returns the number of rows matching where.
func (f *Factory) Count(ctx context.Context, where any) (int64, error) {
	b := f.q().SelectCount().From(f.cfg.Table)
	if where != nil {
		b.Where(where)
	}
	row, err := b.ExecOne(ctx)
	if err != nil {
		return 0, fmt.Errorf("count in %s: %w", f.cfg.Table, err)
	}
	for _, v := range row {
		if n, ok := v.(int64); ok {
			return n, nil
		}
		return 0, fmt.Errorf("count in %s: unexpected %T", f.cfg.Table, v)
	}
	return 0, nil
}

// Exists reports whether any row matches where.
func (f *Factory) Exists(ctx context.Context, where any) (bool, error) {
	n, err := f.Count(ctx, where)
	return n > 0, err
}

// Create inserts a record built from values and returns it.
func (f *Factory) Create(ctx context.Context, values any) (*Record, error) {
	entries, ok := criteria.AsMap(values)
	if !ok {
		return nil, &criteria.InvalidCriteriaError{Reason: fmt.Sprintf("create values must be a mapping, got %T", values)}
	}
	r := f.New()
	for _, e := range entries {
		r.Set(e.Key, e.Value)
	}
	if err := f.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Save inserts a new record or updates the dirty columns of an existing
// one. Saving a clean record is a no-op.
func (f *Factory) Save(ctx context.Context, r *Record) error {
	if r.IsNew() {
		return f.insert(ctx, r)
	}
	if len(r.dirty) == 0 {
		return nil
	}

	id := r.origID
	if id == nil {
		return fmt.Errorf("save in %s: record has no %s", f.cfg.Table, f.cfg.PrimaryKey)
	}
	res, err := f.q().Update(f.cfg.Table).Set(r.dirtyMap()).Where(f.pkWhere(id)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("save in %s: %w", f.cfg.Table, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("save in %s: %w", f.cfg.Table, ErrNotFound)
	}
	r.markClean()
	return nil
}

func (f *Factory) insert(ctx context.Context, r *Record) error {
	if f.cfg.Keys == UUID {
		if _, ok := r.Lookup(f.cfg.PrimaryKey); !ok {
			r.Set(f.cfg.PrimaryKey, f.cfg.IDs.Generate())
		}
	}

	res, err := f.q().Insert(f.cfg.Table).Values(r.dirtyMap()).Exec(ctx)
	if err != nil {
		var nai *store.NoAutoIncrementError
		if errors.As(err, &nai) && nai.Table == "" {
			nai.Table = f.cfg.Table
		}
		if f.cfg.Keys == UUID && nai != nil {
			// UUID keys never come from the driver.
			r.markClean()
			return nil
		}
		return fmt.Errorf("create in %s: %w", f.cfg.Table, err)
	}

	if f.cfg.Keys == AutoIncrement {
		if _, explicit := r.Lookup(f.cfg.PrimaryKey); !explicit {
			if res.LastInsertID == 0 {
				return &store.NoAutoIncrementError{Table: f.cfg.Table}
			}
			r.values[f.cfg.PrimaryKey] = res.LastInsertID
		}
	}
	r.markClean()
	return nil
}

// Delete removes the record's row. The record becomes new again with every
// column dirty, so saving it afterwards re-inserts the row.
func (f *Factory) Delete(ctx context.Context, r *Record) error {
	if r.IsNew() {
		return fmt.Errorf("delete in %s: record was never saved", f.cfg.Table)
	}
	res, err := f.q().Delete(f.cfg.Table).Where(f.pkWhere(r.origID)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete in %s: %w", f.cfg.Table, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete in %s: %w", f.cfg.Table, ErrNotFound)
	}
	r.markDeleted()
	return nil
}
