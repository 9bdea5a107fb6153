package value

import (
	"database/sql/driver"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Encode converts v into its statement representation.
//
// With TagJSON the whole value becomes JSON text. Without a tag, structured
// values (slices, arrays, maps, structs) become Serialized text and
// everything else becomes a normalized Raw scalar. A value that is already
// Encoded is returned unchanged.
func Encode(tag Tag, v any) (Encoded, error) {
	if e, ok := v.(Encoded); ok {
		return e, nil
	}

	if tag == TagJSON {
		text, err := MarshalJSON(v)
		if err != nil {
			return nil, err
		}
		return JSON{Text: string(text)}, nil
	}

	scalar, structured, err := normalize(v)
	if err != nil {
		return nil, err
	}
	if structured {
		text, err := Serialize(v)
		if err != nil {
			return nil, err
		}
		return Serialized{Text: string(text)}, nil
	}
	return Raw{V: scalar}, nil
}

// IsSequence reports whether v is a list of operands (a slice or array other
// than []byte). Encoded values are never sequences.
func IsSequence(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(Encoded); ok {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		return rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	default:
		return false
	}
}

// Elements returns the items of a sequence as []any.
// It returns nil if v is not a sequence.
func Elements(v any) []any {
	if !IsSequence(v) {
		return nil
	}
	if items, ok := v.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(v)
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

// IsNull reports whether v encodes to SQL NULL.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case Raw:
		return x.IsNull()
	case Encoded:
		return false
	case driver.Valuer:
		rv := reflect.ValueOf(x)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return true
		}
		dv, err := x.Value()
		return err == nil && dv == nil
	}
	rv := reflect.ValueOf(v)
	return (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil()
}

// IsNumeric reports whether v normalizes to an integer or float scalar.
func IsNumeric(v any) bool {
	if r, ok := v.(Raw); ok {
		v = r.V
	}
	scalar, structured, err := normalize(v)
	if err != nil || structured {
		return false
	}
	switch scalar.(type) {
	case int64, uint64, float64:
		return true
	default:
		return false
	}
}

// normalize maps v to a driver-friendly scalar. The second result is true
// when v is structured and must be serialized instead.
func normalize(v any) (any, bool, error) {
	switch x := v.(type) {
	case nil:
		return nil, false, nil
	case bool:
		if x {
			return int64(1), false, nil
		}
		return int64(0), false, nil
	case string:
		return x, false, nil
	case []byte:
		return x, false, nil
	case time.Time:
		return x, false, nil
	case driver.Valuer:
		rv := reflect.ValueOf(x)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, false, nil
		}
		dv, err := x.Value()
		if err != nil {
			return nil, false, encodingError(v, "driver.Valuer failed", err)
		}
		return normalize(dv)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, false, nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), false, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return u, false, nil
		}
		return int64(u), false, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), false, nil
	case reflect.Bool:
		if rv.Bool() {
			return int64(1), false, nil
		}
		return int64(0), false, nil
	case reflect.String:
		return rv.String(), false, nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), false, nil
		}
		return nil, true, nil
	case reflect.Array, reflect.Map, reflect.Struct:
		return nil, true, nil
	default:
		return nil, false, encodingError(v, "unsupported kind "+rv.Kind().String(), nil)
	}
}

// Serialize renders a structured value in the generic serialization format:
// YAML 1.2 with sorted mapping keys.
//
// The value is first normalized through JSON so that struct tags are honored,
// and cycles or unsupported types are reported as EncodingError instead of
// reaching the YAML encoder.
func Serialize(v any) ([]byte, error) {
	tree, err := toGeneric(v)
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(nativeNumbers(tree))
	if err != nil {
		return nil, encodingError(v, "serialize", err)
	}
	return out, nil
}

// Decode parses JSON or Serialized text back into dst.
func Decode(e Encoded, dst any) error {
	switch v := e.(type) {
	case JSON:
		if err := json.Unmarshal([]byte(v.Text), dst); err != nil {
			return encodingError(dst, "decode JSON", err)
		}
		return nil
	case Serialized:
		if err := yaml.Unmarshal([]byte(v.Text), dst); err != nil {
			return encodingError(dst, "decode serialized", err)
		}
		return nil
	default:
		return encodingError(e, "only JSON and Serialized values can be decoded", nil)
	}
}

// nativeNumbers replaces json.Number leaves with int64, uint64 or float64 so
// that the YAML encoder emits plain numbers.
func nativeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(x.String(), 10, 64); err == nil {
			return u
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		for i := range x {
			x[i] = nativeNumbers(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = nativeNumbers(x[k])
		}
		return x
	default:
		return v
	}
}
