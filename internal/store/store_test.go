package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	// Verify file was created
	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_AppliesPragmas(t *testing.T) {
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var timeout int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 5000, timeout)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestNormalizeDriver(t *testing.T) {
	assert.Equal(t, DriverSQLite, NormalizeDriver("SQLite"))
	assert.Equal(t, DriverPostgres, NormalizeDriver("postgresql"))
	assert.Equal(t, DriverPostgres, NormalizeDriver("pq"))
	assert.Equal(t, DriverMySQL, NormalizeDriver(" mysql "))
	assert.Equal(t, "other", NormalizeDriver("Other"))
}

func TestDriverOf(t *testing.T) {
	db, err := Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, DriverSQLite, NewBridge(db).Driver())

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()
	assert.Equal(t, "", NewBridge(tx).Driver())
	assert.Equal(t, DriverSQLite, NewBridge(tx, WithDriver("sqlite")).Driver())
}

func TestNewExecutionError_DriverCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantDriver string
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "mysql",
			err:        &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a' for key 'email'"},
			wantDriver: DriverMySQL,
			wantCode:   "1062",
			wantMsg:    "Duplicate entry 'a' for key 'email'",
		},
		{
			name:       "postgres",
			err:        &pq.Error{Code: "23505", Message: "duplicate key value"},
			wantDriver: DriverPostgres,
			wantCode:   "23505",
			wantMsg:    "duplicate key value",
		},
		{
			name:       "wrapped postgres",
			err:        errors.Join(errors.New("context"), &pq.Error{Code: "42P01", Message: "relation does not exist"}),
			wantDriver: DriverPostgres,
			wantCode:   "42P01",
			wantMsg:    "relation does not exist",
		},
		{
			name:    "unknown",
			err:     errors.New("boom"),
			wantMsg: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qe := newExecutionError("", "SELECT 1", []any{1}, tt.err)
			assert.Equal(t, tt.wantDriver, qe.Driver)
			assert.Equal(t, tt.wantCode, qe.Code)
			assert.Equal(t, tt.wantMsg, qe.Message)
			assert.Equal(t, "SELECT 1", qe.SQL)
			assert.ErrorIs(t, qe, tt.err)
			assert.Contains(t, qe.Error(), "[sql: SELECT 1]")
		})
	}
}

func TestIsHelpers(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), &QueryExecutionError{SQL: "x", Message: "m"})
	assert.True(t, IsExecutionError(wrapped))
	assert.False(t, IsNoAutoIncrement(wrapped))

	nai := &NoAutoIncrementError{SQL: "INSERT", Table: "users"}
	assert.True(t, IsNoAutoIncrement(nai))
	assert.Contains(t, nai.Error(), `insert into "users"`)
	assert.False(t, IsExecutionError(nai))
	assert.False(t, IsExecutionError(sql.ErrNoRows))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "SELECT", KindSelect.String())
	assert.Equal(t, "INSERT", KindInsert.String())
	assert.Equal(t, "UPDATE", KindUpdate.String())
	assert.Equal(t, "DELETE", KindDelete.String())
	assert.Equal(t, "RAW", KindRaw.String())
}

// noIDResult mimics drivers that cannot report generated keys.
type noIDResult struct{}

func (noIDResult) LastInsertId() (int64, error) {
	return 0, errors.New("LastInsertId is not supported by this driver")
}
func (noIDResult) RowsAffected() (int64, error) { return 1, nil }

type noIDConn struct{}

func (noIDConn) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}
func (noIDConn) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return noIDResult{}, nil
}

func TestBridge_InsertWithoutDriverID(t *testing.T) {
	b := NewBridge(noIDConn{}, WithDriver("postgres"), WithLogger(discardLogger()))

	_, err := b.Insert(context.Background(), "INSERT INTO t (a) VALUES ($1)", []any{1})
	require.Error(t, err)
	assert.True(t, IsNoAutoIncrement(err))
	assert.Equal(t, "", b.LastError())
}
