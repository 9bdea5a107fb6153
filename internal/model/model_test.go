package model

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mapql/internal/criteria"
	"github.com/roach88/mapql/internal/sqlgen"
	"github.com/roach88/mapql/internal/store"
	"github.com/roach88/mapql/internal/testutil"
)

type User struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
	Money int    `db:"money"`
}

type Note struct {
	UID  string `db:"uid"`
	Body string `db:"body"`
}

func newBridge(t *testing.T, names ...string) *store.Bridge {
	t.Helper()
	db := testutil.OpenDB(t)
	testutil.SeedUsers(t, db, names...)
	return store.NewBridge(db, store.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func usersFactory(t *testing.T, names ...string) *Factory {
	t.Helper()
	f, err := FactoryFor[User](newBridge(t, names...), Config{})
	require.NoError(t, err)
	return f
}

func TestTableName(t *testing.T) {
	tests := map[string]string{
		"User":        "users",
		"UserProfile": "user_profiles",
		"HTTPRequest": "http_requests",
		"Person":      "people",
		"Category":    "categories",
		"OAuth2Token": "o_auth2_tokens",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, TableName(in))
		})
	}
}

func TestFactoryFor_DerivesTable(t *testing.T) {
	br := newBridge(t)

	f, err := FactoryFor[*User](br, Config{})
	require.NoError(t, err)
	assert.Equal(t, "users", f.Table())
	assert.Equal(t, "id", f.PrimaryKey())

	f, err = FactoryFor[User](br, Config{Table: "accounts"})
	require.NoError(t, err)
	assert.Equal(t, "accounts", f.Table())
}

func TestNewFactory_Validation(t *testing.T) {
	_, err := NewFactory(nil, Config{Table: "users"})
	assert.Error(t, err)

	_, err = NewFactory(newBridge(t), Config{})
	assert.Error(t, err)
}

func TestFactory_CreateAndFind(t *testing.T) {
	f := usersFactory(t)
	ctx := context.Background()

	r, err := f.Create(ctx, criteria.M("name", "ann", "email", "ann@example.com", "money", 5))
	require.NoError(t, err)
	assert.False(t, r.IsNew())
	assert.Empty(t, r.Dirty())
	assert.Equal(t, int64(1), r.ID())

	found, err := f.Find(ctx, r.ID())
	require.NoError(t, err)
	assert.Equal(t, "ann", found.Get("name"))
	assert.Equal(t, int64(5), found.Get("money"))

	var u User
	require.NoError(t, found.Decode(&u))
	assert.Equal(t, User{ID: 1, Name: "ann", Email: "ann@example.com", Money: 5}, u)
}

func TestFactory_FindNotFound(t *testing.T) {
	f := usersFactory(t)

	_, err := f.Find(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFactory_FindAll(t *testing.T) {
	f := usersFactory(t, "ann", "bob", "cy", "dee")
	ctx := context.Background()

	records, err := f.FindAll(ctx, criteria.M("money[>]", 10),
		OrderBy("money", sqlgen.Desc),
		Limit(2),
		Offset(1),
	)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "cy", records[0].Get("name"))
	assert.Equal(t, "bob", records[1].Get("name"))

	all, err := f.FindAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := f.FindAll(ctx, criteria.M("name", "zed"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFactory_FindOne(t *testing.T) {
	f := usersFactory(t, "ann", "bob")

	r, err := f.FindOne(context.Background(), criteria.M("email[~]", "bob"))
	require.NoError(t, err)
	assert.Equal(t, "bob", r.Get("name"))
}

func TestFactory_CountAndExists(t *testing.T) {
	f := usersFactory(t, "ann", "bob", "cy")
	ctx := context.Background()

	n, err := f.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = f.Count(ctx, criteria.M("money[<>]", []int{15, 35}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ok, err := f.Exists(ctx, criteria.M("name", "cy"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Exists(ctx, criteria.M("name", "zed"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFactory_SaveUpdatesDirtyColumns(t *testing.T) {
	f := usersFactory(t, "ann")
	ctx := context.Background()

	r, err := f.Find(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, r.Dirty())

	r.Set("money", 99)
	r.Set("(JSON)meta", map[string]any{"vip": true})
	assert.Equal(t, []string{"money", "meta"}, r.Dirty())

	require.NoError(t, f.Save(ctx, r))
	assert.Empty(t, r.Dirty())

	again, err := f.Find(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(99), again.Get("money"))
	assert.Equal(t, `{"vip":true}`, again.Get("meta"))

	// Clean record: nothing to write.
	require.NoError(t, f.Save(ctx, again))
}

func TestFactory_SaveNewRecord(t *testing.T) {
	f := usersFactory(t)
	ctx := context.Background()

	r := f.New()
	assert.True(t, r.IsNew())
	r.Set("name", "bob")

	require.NoError(t, f.Save(ctx, r))
	assert.Equal(t, int64(1), r.ID())
	assert.False(t, r.IsNew())
}

func TestFactory_Delete(t *testing.T) {
	f := usersFactory(t, "ann")
	ctx := context.Background()

	r, err := f.Find(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, f.Delete(ctx, r))

	_, err = f.Find(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.Delete(ctx, f.New())
	assert.Error(t, err)
}

func TestFactory_SaveChangedPrimaryKey(t *testing.T) {
	f := usersFactory(t, "ann", "bob")
	ctx := context.Background()

	r, err := f.Find(ctx, 1)
	require.NoError(t, err)
	r.Set("id", 2)
	r.Set("name", "renamed")

	// The update targets row 1, so moving onto an existing key conflicts
	// instead of rewriting row 2.
	require.Error(t, f.Save(ctx, r))
	bob, err := f.Find(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "bob", bob.Get("name"))

	r.Set("id", 5)
	require.NoError(t, f.Save(ctx, r))

	moved, err := f.Find(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "renamed", moved.Get("name"))
	_, err = f.Find(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	r.Set("money", 1)
	require.NoError(t, f.Save(ctx, r))
	moved, err = f.Find(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved.Get("money"))
}

func TestFactory_SaveAfterDeleteReinserts(t *testing.T) {
	f := usersFactory(t, "ann")
	ctx := context.Background()

	r, err := f.Find(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, f.Delete(ctx, r))
	assert.True(t, r.IsNew())
	assert.Contains(t, r.Dirty(), "name")

	require.NoError(t, f.Save(ctx, r))
	assert.False(t, r.IsNew())

	again, err := f.Find(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ann", again.Get("name"))
	assert.Equal(t, int64(10), again.Get("money"))
}

func TestFactory_UUIDKeys(t *testing.T) {
	f, err := FactoryFor[Note](newBridge(t), Config{
		PrimaryKey: "uid",
		Keys:       UUID,
		IDs:        NewFixedIDs("note-1", "note-2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "notes", f.Table())
	ctx := context.Background()

	r, err := f.Create(ctx, criteria.M("body", "first"))
	require.NoError(t, err)
	assert.Equal(t, "note-1", r.ID())

	found, err := f.Find(ctx, "note-1")
	require.NoError(t, err)

	var n Note
	require.NoError(t, found.Decode(&n))
	assert.Equal(t, Note{UID: "note-1", Body: "first"}, n)
}

func TestFactory_UUIDv7Default(t *testing.T) {
	f, err := NewFactory(newBridge(t), Config{Table: "notes", PrimaryKey: "uid", Keys: UUID})
	require.NoError(t, err)

	r, err := f.Create(context.Background(), map[string]any{"body": "x"})
	require.NoError(t, err)

	id, ok := r.ID().(string)
	require.True(t, ok)
	assert.Len(t, id, 36)
	assert.Equal(t, byte('7'), id[14], "UUID version nibble")
}

func TestFactory_AutoIncrementExplicitKey(t *testing.T) {
	// An explicit key is kept under the AutoIncrement strategy.
	f, err := NewFactory(newBridge(t), Config{Table: "notes", PrimaryKey: "uid"})
	require.NoError(t, err)

	r, err := f.Create(context.Background(), criteria.M("uid", "k", "body", "x"))
	require.NoError(t, err)
	assert.Equal(t, "k", r.ID())
}

func TestFactory_CreateRejectsNonMapping(t *testing.T) {
	f := usersFactory(t)

	_, err := f.Create(context.Background(), []string{"x"})
	assert.True(t, criteria.IsInvalid(err))
}

func TestFactory_ExecutionErrorsWrap(t *testing.T) {
	f, err := NewFactory(newBridge(t), Config{Table: "missing"})
	require.NoError(t, err)

	_, err = f.FindAll(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, store.IsExecutionError(err))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestRecord_Accessors(t *testing.T) {
	r := newRecord("id")
	r.Set("name", "x")
	r.Set("name", "y")

	assert.Equal(t, "y", r.Get("name"))
	assert.Nil(t, r.Get("missing"))
	_, ok := r.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"name"}, r.Dirty())

	vals := r.Values()
	vals["name"] = "changed"
	assert.Equal(t, "y", r.Get("name"))
}

func TestRecord_DecodeWeakTypes(t *testing.T) {
	type row struct {
		Active  bool      `db:"active"`
		Count   int       `db:"count"`
		Created time.Time `db:"created"`
	}
	r := recordFromRow("id", store.Row{
		"active":  "1",
		"count":   int64(3),
		"created": "2024-03-01 09:30:00",
	})

	var got row
	require.NoError(t, r.Decode(&got))
	assert.True(t, got.Active)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), got.Created)
}

func TestFixedIDs_Exhausted(t *testing.T) {
	ids := NewFixedIDs("a")
	assert.Equal(t, "a", ids.Generate())
	assert.Panics(t, func() { ids.Generate() })
}

func TestSequenceIDs_IsIDGenerator(t *testing.T) {
	var gen IDGenerator = testutil.NewSequenceIDs("n")
	assert.Equal(t, "n-1", gen.Generate())
}

// zeroIDConn reports success with a generated key of 0.
type zeroIDConn struct{}

type zeroIDResult struct{}

func (zeroIDResult) LastInsertId() (int64, error) { return 0, nil }
func (zeroIDResult) RowsAffected() (int64, error) { return 1, nil }

func (zeroIDConn) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}
func (zeroIDConn) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return zeroIDResult{}, nil
}

func TestFactory_AutoIncrementZeroID(t *testing.T) {
	br := store.NewBridge(zeroIDConn{}, store.WithDriver("mysql"), store.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	f, err := NewFactory(br, Config{Table: "events"})
	require.NoError(t, err)

	_, err = f.Create(context.Background(), criteria.M("name", "x"))
	require.Error(t, err)
	assert.True(t, store.IsNoAutoIncrement(err))
	assert.Contains(t, err.Error(), `"events"`)
}
