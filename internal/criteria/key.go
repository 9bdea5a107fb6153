package criteria

import (
	"regexp"
	"strings"
)

// Tag is the bracketed operator suffix of a mapping key.
type Tag int

const (
	TagNone       Tag = iota
	TagGT             // [>]
	TagGTE            // [>=]
	TagLT             // [<]
	TagLTE            // [<=]
	TagNot            // [!]
	TagBetween        // [<>]
	TagNotBetween     // [><]
	TagLike           // [~]
	TagNotLike        // [!~]
	TagAdd            // [+]
	TagSubtract       // [-]
	TagMultiply       // [*]
	TagDivide         // [/]
)

var tagSpellings = map[string]Tag{
	">":  TagGT,
	">=": TagGTE,
	"<":  TagLT,
	"<=": TagLTE,
	"!":  TagNot,
	"<>": TagBetween,
	"><": TagNotBetween,
	"~":  TagLike,
	"!~": TagNotLike,
	"+":  TagAdd,
	"-":  TagSubtract,
	"*":  TagMultiply,
	"/":  TagDivide,
}

// String returns the bracketed spelling of the tag, or "" for TagNone.
func (t Tag) String() string {
	for s, tag := range tagSpellings {
		if tag == t {
			return "[" + s + "]"
		}
	}
	return ""
}

// IsArithmetic reports whether the tag is one of [+] [-] [*] [/].
func (t Tag) IsArithmetic() bool {
	return t >= TagAdd && t <= TagDivide
}

// ColumnKey is a decomposed mapping key.
type ColumnKey struct {
	// Column is the column name, possibly qualified as "table.column".
	Column string

	// Tag is the operator suffix (TagNone if absent or unrecognised).
	Tag Tag

	// JSON is true when the key carries the (JSON) prefix.
	JSON bool
}

// Unknown bracket contents do not match the tag group, so the lazy column
// group extends over them and they become part of the column name.
var keyPattern = regexp.MustCompile(`^(\(JSON\)\s*)?(.+?)\s*(\[(>=|<=|<>|><|!~|>|<|!|~|\+|-|\*|/)\])?$`)

var logicalPattern = regexp.MustCompile(`^(AND|OR)(\s+#.*)?$`)

// ParseKey decomposes a mapping key into column, tag and encoding prefix.
//
//	ParseKey("id[>]")          → {Column: "id", Tag: TagGT}
//	ParseKey("(JSON)meta")     → {Column: "meta", JSON: true}
//	ParseKey("name[foo]")      → {Column: "name[foo]"}
func ParseKey(key string) ColumnKey {
	m := keyPattern.FindStringSubmatch(strings.TrimSpace(key))
	if m == nil {
		return ColumnKey{Column: strings.TrimSpace(key)}
	}
	ck := ColumnKey{
		Column: strings.TrimSpace(m[2]),
		JSON:   m[1] != "",
	}
	if m[4] != "" {
		ck.Tag = tagSpellings[m[4]]
	}
	return ck
}

// logicalOp reports whether key is a logical group key ("AND", "OR",
// optionally followed by a #comment) and which operator it names.
func logicalOp(key string) (LogicOp, bool) {
	m := logicalPattern.FindStringSubmatch(strings.TrimSpace(key))
	if m == nil {
		return 0, false
	}
	if m[1] == "OR" {
		return Or, true
	}
	return And, true
}

// IsLogicalKey reports whether key introduces a nested AND/OR group.
func IsLogicalKey(key string) bool {
	_, ok := logicalOp(key)
	return ok
}
