package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Conn is the connection collaborator: it runs SQL text with bound values.
// *sql.DB, *sql.Conn and *sql.Tx all satisfy it.
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// NormalizeDriver maps driver aliases to the names registered with
// database/sql. Unknown names are returned lowercased.
func NormalizeDriver(name string) string {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pq":
		return DriverPostgres
	default:
		return n
	}
}

// Open opens and pings a database.
//
// For sqlite3 the pool is limited to one connection (SQLite has a single
// writer) and the pragmas listed in the package documentation are applied.
func Open(driver, dsn string) (*sql.DB, error) {
	driver = NormalizeDriver(driver)
	switch driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	// Open database (sqlite3 creates the file if it doesn't exist)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	return db, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// driverOf names the driver behind conn when conn is a *sql.DB.
func driverOf(conn Conn) string {
	db, ok := conn.(*sql.DB)
	if !ok || db == nil {
		return ""
	}
	switch db.Driver().(type) {
	case *sqlite3.SQLiteDriver:
		return DriverSQLite
	case *mysql.MySQLDriver:
		return DriverMySQL
	case *pq.Driver:
		return DriverPostgres
	default:
		return ""
	}
}
