package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// scanRows reads rows into column-name keyed maps.
func scanRows(rows *sql.Rows, mode FetchMode) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("read column types: %w", err)
	}
	binary := make([]bool, len(cols))
	for i, ct := range types {
		binary[i] = isBinaryType(ct.DatabaseTypeName())
	}

	out := []Row{}
	for rows.Next() {
		dest := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(Row, len(cols))
		for i, name := range cols {
			row[name] = normalizeColumn(dest[i], binary[i])
		}
		out = append(out, row)

		if mode == FetchOne {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return out, nil
}

// normalizeColumn turns driver text columns delivered as []byte into
// strings. Binary columns keep their bytes.
func normalizeColumn(v any, binary bool) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if binary {
		out := make([]byte, len(b))
		copy(out, b)
		return out
	}
	return string(b)
}

func isBinaryType(name string) bool {
	name = strings.ToUpper(name)
	return strings.Contains(name, "BLOB") ||
		strings.Contains(name, "BINARY") ||
		name == "BYTEA"
}
