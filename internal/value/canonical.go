package value

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// MarshalJSON produces the sorted-key JSON used for (JSON)-tagged values.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units (RFC 8785 ordering)
//  2. No HTML escaping (< > & are kept as-is)
//  3. Strings are written as given, without Unicode normalization
//  4. No insignificant whitespace
//
// Invalid UTF-8 in a string or map key is an EncodingError rather than
// being replaced with U+FFFD.
func MarshalJSON(v any) ([]byte, error) {
	tree, err := toGeneric(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeCanonical(&buf, tree); err != nil {
		return nil, encodingError(v, "marshal JSON", err)
	}
	return buf.Bytes(), nil
}

var errInvalidUTF8 = errors.New("string is not valid UTF-8")

// toGeneric round-trips v through encoding/json into a tree of nil, bool,
// string, json.Number, []any and map[string]any. encoding/json rejects
// cycles, channels, funcs and complex numbers, which surface as EncodingError.
func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, encodingError(v, "value is not serializable", err)
	}
	// json.Marshal coerces invalid UTF-8 to U+FFFD. It has already rejected
	// cycles, so the walk terminates.
	if !validUTF8(reflect.ValueOf(v)) {
		return nil, encodingError(v, "value is not serializable", errInvalidUTF8)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, encodingError(v, "value is not serializable", err)
	}
	return tree, nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(val.String())
	case string:
		s, err := marshalCanonicalString(val)
		if err != nil {
			return err
		}
		buf.Write(s)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareKeysRFC8785)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := marshalCanonicalString(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// validUTF8 reports whether every string and map key json.Marshal would
// encode from rv is valid UTF-8. Values with their own marshaler are
// opaque and pass.
func validUTF8(rv reflect.Value) bool {
	if !rv.IsValid() {
		return true
	}
	t := rv.Type()
	if t.Kind() != reflect.String && (t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType)) {
		return true
	}

	switch rv.Kind() {
	case reflect.String:
		return utf8.ValidString(rv.String())
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil() || validUTF8(rv.Elem())
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return true // base64
		}
		fallthrough
	case reflect.Array:
		for i := range rv.Len() {
			if !validUTF8(rv.Index(i)) {
				return false
			}
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if iter.Key().Kind() == reflect.String && !utf8.ValidString(iter.Key().String()) {
				return false
			}
			if !validUTF8(iter.Value()) {
				return false
			}
		}
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if (!f.IsExported() && !f.Anonymous) || f.Tag.Get("json") == "-" {
				continue
			}
			if !validUTF8(rv.Field(i)) {
				return false
			}
		}
	}
	return true
}

// marshalCanonicalString encodes s as a JSON string. Only control
// characters, backslash and quote are escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, errInvalidUTF8
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	// encoding/json escapes U+2028 and U+2029 for JavaScript; undo that.
	return unescapeLineSeparators(out), nil
}

// unescapeLineSeparators rewrites \u2028 and \u2029 escapes as literal
// characters. Escape sequences are consumed pairwise, so an escaped
// backslash followed by "u2028" is left alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		if i+5 < len(data) && data[i+1] == 'u' && strings.HasPrefix(string(data[i+2:i+5]), "202") {
			switch data[i+5] {
			case '8':
				out = append(out, "\u2028"...)
				i += 5
				continue
			case '9':
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, c)
		if i+1 < len(data) {
			out = append(out, data[i+1])
			i++
		}
	}
	return out
}

// compareKeysRFC8785 orders keys by UTF-16 code units.
// Go's string comparison uses UTF-8 bytes, which differs for astral characters.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
