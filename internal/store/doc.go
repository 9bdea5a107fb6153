// Package store runs compiled statements against a database/sql connection.
//
// A Bridge wraps anything that satisfies Conn (*sql.DB, *sql.Conn, *sql.Tx)
// and normalizes results into one of three shapes:
//   - Query: a slice of column-name keyed rows (all rows, or at most one)
//   - Insert: the driver's last insert id
//   - Exec: the number of affected rows
//
// # Errors
//
// Driver failures are returned as *QueryExecutionError carrying the failing
// SQL, its arguments and the driver's own code and message when the driver
// is sqlite3, mysql or postgres. The last raw driver message is also kept
// on the Bridge (LastError).
//
// # Database Configuration
//
// Open registers and configures the three supported drivers. For sqlite3
// the connection pool is limited to one connection and these pragmas are
// applied:
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
