package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Error codes for store errors.
const (
	// CodeQueryExecution indicates the driver rejected a statement.
	CodeQueryExecution = "QUERY_EXECUTION"

	// CodeNoAutoIncrement indicates an insert produced no generated key.
	CodeNoAutoIncrement = "NO_AUTO_INCREMENT"
)

// QueryExecutionError is returned when the connection reports a failure.
// The failing SQL is always attached.
type QueryExecutionError struct {
	// SQL is the statement text that failed.
	SQL string

	// Args are the values that were bound.
	Args []any

	// Driver names the database driver, if known.
	Driver string

	// Code is the driver-specific error code (MySQL error number,
	// PostgreSQL SQLSTATE, SQLite result code), or "".
	Code string

	// Message is the raw driver message.
	Message string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *QueryExecutionError) Error() string {
	var b strings.Builder
	b.WriteString(CodeQueryExecution)
	b.WriteString(": ")
	if e.Driver != "" {
		b.WriteString(e.Driver)
		if e.Code != "" {
			b.WriteString(" " + e.Code)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	fmt.Fprintf(&b, " [sql: %s]", e.SQL)
	return b.String()
}

// Unwrap returns the underlying driver error.
func (e *QueryExecutionError) Unwrap() error {
	return e.Err
}

// NoAutoIncrementError is returned when an insert was expected to produce a
// generated key and the driver could not supply one.
type NoAutoIncrementError struct {
	// SQL is the insert statement.
	SQL string

	// Table is the target table, when known.
	Table string

	// Err is the driver's error, if it reported one.
	Err error
}

// Error implements the error interface.
func (e *NoAutoIncrementError) Error() string {
	target := "insert"
	if e.Table != "" {
		target = fmt.Sprintf("insert into %q", e.Table)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s returned no generated key: %v", CodeNoAutoIncrement, target, e.Err)
	}
	return fmt.Sprintf("%s: %s returned no generated key", CodeNoAutoIncrement, target)
}

// Unwrap returns the underlying error.
func (e *NoAutoIncrementError) Unwrap() error {
	return e.Err
}

// IsExecutionError returns true if err is or wraps a QueryExecutionError.
func IsExecutionError(err error) bool {
	var qe *QueryExecutionError
	return errors.As(err, &qe)
}

// IsNoAutoIncrement returns true if err is or wraps a NoAutoIncrementError.
func IsNoAutoIncrement(err error) bool {
	var ne *NoAutoIncrementError
	return errors.As(err, &ne)
}

// newExecutionError builds a QueryExecutionError, pulling code and message
// out of the known driver error types.
func newExecutionError(driver, query string, args []any, err error) *QueryExecutionError {
	qe := &QueryExecutionError{
		SQL:     query,
		Args:    args,
		Driver:  driver,
		Message: err.Error(),
		Err:     err,
	}

	var (
		myErr *mysql.MySQLError
		pqErr *pq.Error
		liErr sqlite3.Error
	)
	switch {
	case errors.As(err, &myErr):
		qe.Driver = DriverMySQL
		qe.Code = strconv.Itoa(int(myErr.Number))
		qe.Message = myErr.Message
	case errors.As(err, &pqErr):
		qe.Driver = DriverPostgres
		qe.Code = string(pqErr.Code)
		qe.Message = pqErr.Message
	case errors.As(err, &liErr):
		qe.Driver = DriverSQLite
		qe.Code = strconv.Itoa(int(liErr.Code))
		qe.Message = liErr.Error()
	}
	return qe
}
