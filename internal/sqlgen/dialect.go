package sqlgen

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect is the quoting strategy for one SQL family.
type Dialect interface {
	// Name identifies the dialect in diagnostics and configuration.
	Name() string

	// QuoteIdent quotes a possibly qualified identifier ("t.c").
	// A "*" segment is left bare.
	QuoteIdent(name string) string

	// QuoteString renders s as an escaped string literal.
	QuoteString(s string) string

	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder(n int) string

	// BackslashEscapes reports whether a backslash escapes the next
	// character inside string literals.
	BackslashEscapes() bool

	// CommaLimit reports whether "LIMIT offset, n" is accepted.
	CommaLimit() bool

	// OffsetOnly renders an OFFSET without a row count.
	OffsetOnly(offset int64) string
}

type dialect struct {
	name       string
	quote      byte
	numbered   bool
	backslash  bool
	commaLimit bool
	noCount    string
}

var (
	// MySQL quotes identifiers with backticks and binds with ?.
	MySQL Dialect = dialect{name: "mysql", quote: '`', backslash: true, commaLimit: true}

	// SQLite accepts the MySQL spelling; OFFSET needs a LIMIT, so -1 is
	// written for "no limit".
	SQLite Dialect = dialect{name: "sqlite3", quote: '`', commaLimit: true, noCount: "-1"}

	// Postgres uses ANSI quoting and numbered $n placeholders.
	Postgres Dialect = dialect{name: "postgres", quote: '"', numbered: true}
)

// DialectFor returns the dialect for a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "", "mysql":
		return MySQL, nil
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "postgres", "postgresql", "pq", "pgx":
		return Postgres, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", driver)
	}
}

func (d dialect) Name() string { return d.name }

func (d dialect) QuoteIdent(name string) string {
	segments := strings.Split(strings.TrimSpace(name), ".")
	q := string(d.quote)
	for i, s := range segments {
		s = strings.TrimSpace(s)
		if s == "*" {
			segments[i] = s
			continue
		}
		segments[i] = q + strings.ReplaceAll(s, q, q+q) + q
	}
	return strings.Join(segments, ".")
}

func (d dialect) QuoteString(s string) string {
	if d.backslash {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (d dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d dialect) BackslashEscapes() bool { return d.backslash }

func (d dialect) CommaLimit() bool { return d.commaLimit }

func (d dialect) OffsetOnly(offset int64) string {
	if d.noCount != "" {
		return "LIMIT " + d.noCount + " OFFSET " + strconv.FormatInt(offset, 10)
	}
	return "OFFSET " + strconv.FormatInt(offset, 10)
}
