package model

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-viper/mapstructure/v2"

	"github.com/roach88/mapql/internal/criteria"
	"github.com/roach88/mapql/internal/store"
	"github.com/roach88/mapql/internal/value"
)

// Record is one row as a column map.
//
// Set marks columns dirty; Save writes only dirty columns. A Record is not
// safe for concurrent use.
type Record struct {
	pk     string
	values map[string]any
	json   map[string]bool
	dirty  []string
	isNew  bool
	// origID is the key the row is stored under, so an UPDATE still finds
	// it after the key column itself is changed.
	origID any
}

func newRecord(pk string) *Record {
	return &Record{
		pk:     pk,
		values: map[string]any{},
		json:   map[string]bool{},
		isNew:  true,
	}
}

func recordFromRow(pk string, row store.Row) *Record {
	r := newRecord(pk)
	r.values = maps.Clone(map[string]any(row))
	r.isNew = false
	r.origID = r.values[pk]
	return r
}

// Get returns the value of a column, or nil if it is not set.
func (r *Record) Get(name string) any {
	return r.values[name]
}

// Lookup returns the value of a column and whether it is set.
func (r *Record) Lookup(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set assigns a column and marks it dirty. A "(JSON)" prefix on name
// stores the value as JSON text when the record is saved.
func (r *Record) Set(name string, v any) {
	ck := criteria.ParseKey(name)
	col := ck.Column
	r.values[col] = v
	r.json[col] = ck.JSON
	if !slices.Contains(r.dirty, col) {
		r.dirty = append(r.dirty, col)
	}
}

// ID returns the primary key value.
func (r *Record) ID() any {
	return r.values[r.pk]
}

// Values returns a copy of the column map.
func (r *Record) Values() map[string]any {
	return maps.Clone(r.values)
}

// Dirty returns the columns changed since the record was loaded or saved,
// in the order they were first set.
func (r *Record) Dirty() []string {
	return slices.Clone(r.dirty)
}

// IsNew reports whether the record has not been inserted yet.
func (r *Record) IsNew() bool {
	return r.isNew
}

// Decode copies the column map into dst, a pointer to a struct. Fields are
// matched by their `db` tag (or name) and loosely typed values are
// converted, so an int64 column can fill an int field and a "1" can fill a
// bool.
func (r *Record) Decode(dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "db",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(value.TimeLayout),
		Result:           dst,
	})
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if err := dec.Decode(r.values); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// dirtyMap builds the ordered mapping for INSERT or UPDATE from the dirty
// columns, restoring the (JSON) prefix where it was used.
func (r *Record) dirtyMap() criteria.Map {
	m := make(criteria.Map, 0, len(r.dirty))
	for _, col := range r.dirty {
		key := col
		if r.json[col] {
			key = "(JSON)" + col
		}
		m = append(m, criteria.Entry{Key: key, Value: r.values[col]})
	}
	return m
}

func (r *Record) markClean() {
	r.dirty = nil
	r.json = map[string]bool{}
	r.isNew = false
	r.origID = r.values[r.pk]
}

// markDeleted turns the record back into an unsaved one with every column
// dirty, so a later Save inserts the whole row again.
func (r *Record) markDeleted() {
	r.dirty = slices.Sorted(maps.Keys(r.values))
	r.isNew = true
	r.origID = nil
}
