package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		key  string
		want ColumnKey
	}{
		{"id", ColumnKey{Column: "id"}},
		{"id[>]", ColumnKey{Column: "id", Tag: TagGT}},
		{"id[>=]", ColumnKey{Column: "id", Tag: TagGTE}},
		{"id[<]", ColumnKey{Column: "id", Tag: TagLT}},
		{"id[<=]", ColumnKey{Column: "id", Tag: TagLTE}},
		{"id[!]", ColumnKey{Column: "id", Tag: TagNot}},
		{"age[<>]", ColumnKey{Column: "age", Tag: TagBetween}},
		{"age[><]", ColumnKey{Column: "age", Tag: TagNotBetween}},
		{"name[~]", ColumnKey{Column: "name", Tag: TagLike}},
		{"name[!~]", ColumnKey{Column: "name", Tag: TagNotLike}},
		{"money[+]", ColumnKey{Column: "money", Tag: TagAdd}},
		{"money[-]", ColumnKey{Column: "money", Tag: TagSubtract}},
		{"money[*]", ColumnKey{Column: "money", Tag: TagMultiply}},
		{"money[/]", ColumnKey{Column: "money", Tag: TagDivide}},
		{"(JSON)meta", ColumnKey{Column: "meta", JSON: true}},
		{"(JSON) meta", ColumnKey{Column: "meta", JSON: true}},
		{"(JSON)meta[!]", ColumnKey{Column: "meta", Tag: TagNot, JSON: true}},
		{"users.id[>]", ColumnKey{Column: "users.id", Tag: TagGT}},
		{" id [>] ", ColumnKey{Column: "id", Tag: TagGT}},
		{"name[foo]", ColumnKey{Column: "name[foo]"}},
		{"name[]", ColumnKey{Column: "name[]"}},
		{"[>]", ColumnKey{Column: "[>]"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKey(tt.key))
		})
	}
}

func TestIsLogicalKey(t *testing.T) {
	assert.True(t, IsLogicalKey("AND"))
	assert.True(t, IsLogicalKey("OR"))
	assert.True(t, IsLogicalKey("OR #second"))
	assert.True(t, IsLogicalKey("AND  # age range"))
	assert.False(t, IsLogicalKey("and"))
	assert.False(t, IsLogicalKey("ORDER"))
	assert.False(t, IsLogicalKey("OR#x"))
	assert.False(t, IsLogicalKey("ANDROID"))
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "[>=]", TagGTE.String())
	assert.Equal(t, "[!~]", TagNotLike.String())
	assert.Equal(t, "", TagNone.String())
	assert.True(t, TagAdd.IsArithmetic())
	assert.True(t, TagDivide.IsArithmetic())
	assert.False(t, TagNot.IsArithmetic())
}
