package value

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func TestEncode_Scalars(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	var nilPtr *int
	seven := 7

	tests := []struct {
		name    string
		in      any
		arg     any
		literal string
	}{
		{"nil", nil, nil, "NULL"},
		{"nil pointer", nilPtr, nil, "NULL"},
		{"int", 42, int64(42), "42"},
		{"int8", int8(-3), int64(-3), "-3"},
		{"uint32", uint32(9), int64(9), "9"},
		{"pointer to int", &seven, int64(7), "7"},
		{"float", 1.5, 1.5, "1.5"},
		{"true", true, int64(1), "1"},
		{"false", false, int64(0), "0"},
		{"string", "it's", "it's", "'it''s'"},
		{"bytes", []byte{0xde, 0xad}, []byte{0xde, 0xad}, "X'dead'"},
		{"time", ts, ts, "'2024-03-01 12:30:00'"},
		{"valid NullString", sql.NullString{String: "x", Valid: true}, "x", "'x'"},
		{"invalid NullInt64", sql.NullInt64{}, nil, "NULL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Encode(TagNone, tt.in)
			require.NoError(t, err)
			require.IsType(t, Raw{}, enc)
			assert.Equal(t, tt.arg, enc.Arg())
			assert.Equal(t, tt.literal, Literal(enc, quote))
		})
	}
}

func TestEncode_NamedScalarTypes(t *testing.T) {
	type status string
	type level int

	enc, err := Encode(TagNone, status("active"))
	require.NoError(t, err)
	assert.Equal(t, "active", enc.Arg())

	enc, err = Encode(TagNone, level(3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), enc.Arg())
}

func TestEncode_StructuredWithoutTagIsSerialized(t *testing.T) {
	enc, err := Encode(TagNone, []string{"a", "b"})
	require.NoError(t, err)

	ser, ok := enc.(Serialized)
	require.True(t, ok, "expected Serialized, got %T", enc)
	assert.Equal(t, "- a\n- b\n", ser.Text)
}

func TestEncode_JSONTag(t *testing.T) {
	enc, err := Encode(TagJSON, map[string]any{"b": 1, "a": []any{"x", true}})
	require.NoError(t, err)

	j, ok := enc.(JSON)
	require.True(t, ok, "expected JSON, got %T", enc)
	assert.Equal(t, `{"a":["x",true],"b":1}`, j.Text)
	assert.Equal(t, j.Text, j.Arg())
}

func TestEncode_JSONTagOnScalar(t *testing.T) {
	enc, err := Encode(TagJSON, "hi")
	require.NoError(t, err)
	assert.Equal(t, JSON{Text: `"hi"`}, enc)
}

func TestEncode_SerializedDistinctFromJSON(t *testing.T) {
	in := []any{"a", "b"}

	ser, err := Encode(TagNone, in)
	require.NoError(t, err)
	js, err := Encode(TagJSON, in)
	require.NoError(t, err)

	assert.NotEqual(t, ser.Arg(), js.Arg())
}

func TestDecode_RoundTrip(t *testing.T) {
	in := map[string]any{
		"tags":  []any{"a", "b"},
		"owner": "ann",
	}

	t.Run("json", func(t *testing.T) {
		enc, err := Encode(TagJSON, in)
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, Decode(enc, &out))
		assert.Equal(t, in, out)
	})

	t.Run("serialized", func(t *testing.T) {
		enc, err := Encode(TagNone, in)
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, Decode(enc, &out))
		assert.Equal(t, in, out)
	})

	t.Run("raw cannot be decoded", func(t *testing.T) {
		var out any
		err := Decode(Raw{V: "x"}, &out)
		require.Error(t, err)
		assert.True(t, IsEncodingError(err))
	})
}

func TestDecode_SerializedUint64(t *testing.T) {
	in := []uint64{18446744073709551615, 1}

	enc, err := Encode(TagNone, in)
	require.NoError(t, err)
	ser, ok := enc.(Serialized)
	require.True(t, ok, "expected Serialized, got %T", enc)
	assert.Contains(t, ser.Text, "18446744073709551615")

	var out []uint64
	require.NoError(t, Decode(enc, &out))
	assert.Equal(t, in, out)
}

func TestEncode_Errors(t *testing.T) {
	type node struct {
		Next *node `json:"next"`
	}
	cyclic := &node{}
	cyclic.Next = cyclic

	tests := []struct {
		name string
		tag  Tag
		in   any
	}{
		{"channel", TagNone, make(chan int)},
		{"func", TagNone, func() {}},
		{"cyclic json", TagJSON, cyclic},
		{"cyclic serialized", TagNone, []any{cyclic}},
		{"map with func", TagNone, map[string]any{"f": func() {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.tag, tt.in)
			require.Error(t, err)
			assert.True(t, IsEncodingError(err), "got %v", err)
		})
	}
}

func TestEncode_ExprPassesThrough(t *testing.T) {
	enc, err := Encode(TagJSON, Expr("NOW()"))
	require.NoError(t, err)
	assert.Equal(t, Expr("NOW()"), enc)
	assert.Nil(t, enc.Arg())
	assert.Equal(t, "NOW()", Literal(enc, quote))
}

func TestIsSequence(t *testing.T) {
	assert.True(t, IsSequence([]int{1, 2}))
	assert.True(t, IsSequence([2]string{"a", "b"}))
	assert.True(t, IsSequence([]any{}))
	assert.False(t, IsSequence([]byte("abc")))
	assert.False(t, IsSequence("abc"))
	assert.False(t, IsSequence(nil))
	assert.False(t, IsSequence(map[string]any{}))

	assert.Equal(t, []any{1, 2}, Elements([]int{1, 2}))
	assert.Nil(t, Elements("abc"))
}

func TestIsNullAndIsNumeric(t *testing.T) {
	var p *string
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(p))
	assert.True(t, IsNull(Null))
	assert.True(t, IsNull(sql.NullString{}))
	assert.False(t, IsNull(""))
	assert.False(t, IsNull(0))
	assert.False(t, IsNull(JSON{Text: "null"}))

	assert.True(t, IsNumeric(3))
	assert.True(t, IsNumeric(2.5))
	assert.True(t, IsNumeric(Raw{V: int64(1)}))
	assert.False(t, IsNumeric("3"))
	assert.False(t, IsNumeric([]int{1}))
}
