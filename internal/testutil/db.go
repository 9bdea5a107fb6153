package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// UsersSchema is the fixture table used across package tests.
const UsersSchema = `
CREATE TABLE users (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	name      TEXT NOT NULL,
	email     TEXT UNIQUE,
	money     INTEGER NOT NULL DEFAULT 0,
	login_log TEXT,
	meta      TEXT,
	avatar    BLOB
);

CREATE TABLE notes (
	uid  TEXT PRIMARY KEY,
	body TEXT NOT NULL
);
`

// OpenDB creates a fresh SQLite database in a temp dir with the fixture
// schema applied. The database is closed when the test ends.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	return OpenDBAt(t, filepath.Join(t.TempDir(), "test.db"))
}

// OpenDBAt is OpenDB with a caller-chosen file path.
func OpenDBAt(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(UsersSchema); err != nil {
		t.Fatalf("apply fixture schema: %v", err)
	}
	return db
}

// SeedUsers inserts one row per name, with email "<name>@example.com" and
// money equal to 10 times the row position (10, 20, ...).
func SeedUsers(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for i, name := range names {
		_, err := db.Exec(
			"INSERT INTO users (name, email, money) VALUES (?, ?, ?)",
			name, name+"@example.com", (i+1)*10,
		)
		if err != nil {
			t.Fatalf("seed user %q: %v", name, err)
		}
	}
}
