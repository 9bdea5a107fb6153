// Package testutil provides deterministic helpers for tests: a SQLite
// fixture database and a sequential ID generator.
package testutil
