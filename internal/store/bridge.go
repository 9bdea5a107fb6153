package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
)

// Kind is the statement kind a result was produced for.
type Kind int

const (
	KindRaw Kind = iota
	KindSelect
	KindInsert
	KindUpdate
	KindDelete
)

// String returns the SQL verb for the kind.
func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindInsert:
		return "INSERT"
	case KindUpdate:
		return "UPDATE"
	case KindDelete:
		return "DELETE"
	default:
		return "RAW"
	}
}

// FetchMode selects how many rows Query returns.
type FetchMode int

const (
	// FetchAll returns every row.
	FetchAll FetchMode = iota
	// FetchOne returns at most one row.
	FetchOne
)

// Row is one result row keyed by column name.
type Row map[string]any

// Result is the normalized outcome of executing one statement.
// Only the field matching Kind is meaningful.
type Result struct {
	Kind         Kind
	Rows         []Row
	RowsAffected int64
	LastInsertID int64
}

// Bridge hands compiled statements to a Conn.
//
// A Bridge keeps only the last driver error message, guarded by a mutex,
// so it may be shared between goroutines.
type Bridge struct {
	conn   Conn
	driver string
	logger *slog.Logger

	mu      sync.Mutex
	lastErr string
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger statements are traced to.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithDriver names the driver for error reports. Only needed when conn is
// not a *sql.DB (for example a *sql.Tx).
func WithDriver(name string) Option {
	return func(b *Bridge) {
		b.driver = NormalizeDriver(name)
	}
}

// NewBridge creates a Bridge over conn.
func NewBridge(conn Conn, opts ...Option) *Bridge {
	b := &Bridge{
		conn:   conn,
		driver: driverOf(conn),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Driver returns the driver name, or "" if unknown.
func (b *Bridge) Driver() string {
	return b.driver
}

// LastError returns the raw message of the most recent driver failure,
// or "" if no statement has failed.
func (b *Bridge) LastError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Query runs a row-returning statement.
//
// Returns an empty slice (not nil) when no rows match. With FetchOne the
// cursor is closed after the first row.
func (b *Bridge) Query(ctx context.Context, query string, args []any, mode FetchMode) ([]Row, error) {
	b.trace(query, args, KindSelect)

	rows, err := b.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, b.fail(query, args, err)
	}
	defer rows.Close()

	out, err := scanRows(rows, mode)
	if err != nil {
		return nil, b.fail(query, args, err)
	}
	return out, nil
}

// Insert runs an INSERT and returns the generated key.
//
// A driver that cannot report generated keys (lib/pq) yields
// *NoAutoIncrementError. A table without an auto-increment column yields
// whatever the driver reports, usually 0; callers that require a key
// treat 0 as absent.
func (b *Bridge) Insert(ctx context.Context, query string, args []any) (int64, error) {
	b.trace(query, args, KindInsert)

	res, err := b.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, b.fail(query, args, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &NoAutoIncrementError{SQL: query, Err: err}
	}
	return id, nil
}

// Exec runs an UPDATE, DELETE or other statement and returns the number of
// affected rows.
func (b *Bridge) Exec(ctx context.Context, query string, args []any) (int64, error) {
	b.trace(query, args, KindRaw)

	res, err := b.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, b.fail(query, args, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, b.fail(query, args, err)
	}
	return n, nil
}

// Run dispatches on kind: SELECT goes through Query, INSERT through Insert
// and everything else through Exec.
func (b *Bridge) Run(ctx context.Context, kind Kind, query string, args []any, mode FetchMode) (Result, error) {
	res := Result{Kind: kind}
	var err error
	switch kind {
	case KindSelect:
		res.Rows, err = b.Query(ctx, query, args, mode)
	case KindInsert:
		res.LastInsertID, err = b.Insert(ctx, query, args)
	default:
		res.RowsAffected, err = b.Exec(ctx, query, args)
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (b *Bridge) trace(query string, args []any, kind Kind) {
	b.logger.Debug("executing statement",
		"kind", kind.String(),
		"sql", query,
		"args", len(args),
	)
}

func (b *Bridge) fail(query string, args []any, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		b.logger.Debug("statement cancelled", "sql", query, "error", err)
	} else {
		b.logger.Error("statement failed", "sql", query, "error", err)
	}

	qe := newExecutionError(b.driver, query, args, err)

	b.mu.Lock()
	b.lastErr = qe.Message
	b.mu.Unlock()

	return qe
}

var _ Conn = (*sql.DB)(nil)
var _ Conn = (*sql.Tx)(nil)
var _ Conn = (*sql.Conn)(nil)
