package criteria

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   string
	Value any
}

// Map is an ordered criteria mapping. Entries are processed in slice order,
// which is the declaration order the criteria syntax depends on.
type Map []Entry

// M builds a Map from alternating keys and values:
//
//	criteria.M("id[>]", 100, "name", "x")
//
// M panics if given an odd number of arguments or a non-string key; it is
// meant for literal mappings written in code.
func M(kv ...any) Map {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("criteria.M: odd number of arguments (%d)", len(kv)))
	}
	m := make(Map, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("criteria.M: key at position %d is %T, not string", i, kv[i]))
		}
		m = append(m, Entry{Key: key, Value: kv[i+1]})
	}
	return m
}

// Get returns the value of the first entry with the given key.
func (m Map) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in declaration order.
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// AsMap converts v to a Map. A Map is returned as-is; a map[string]any has
// no order of its own, so its keys are sorted to keep output deterministic.
func AsMap(v any) (Map, bool) {
	switch m := v.(type) {
	case Map:
		return m, true
	case *Map:
		if m == nil {
			return nil, false
		}
		return *m, true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Map, 0, len(m))
		for _, k := range keys {
			out = append(out, Entry{Key: k, Value: m[k]})
		}
		return out, true
	default:
		return nil, false
	}
}

// UnmarshalYAML decodes a YAML mapping node, keeping key order. Values of
// AND/OR keys decode as nested Maps; all other values decode generically.
func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: criteria must be a mapping", node.Line)
	}

	out := make(Map, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		valNode := node.Content[i+1]

		var val any
		if IsLogicalKey(key) && valNode.Kind == yaml.MappingNode {
			var sub Map
			if err := sub.UnmarshalYAML(valNode); err != nil {
				return err
			}
			val = sub
		} else if err := valNode.Decode(&val); err != nil {
			return fmt.Errorf("line %d: key %q: %w", valNode.Line, key, err)
		}
		out = append(out, Entry{Key: key, Value: val})
	}
	*m = out
	return nil
}

// UnmarshalJSON decodes a JSON object, keeping key order. Numbers decode as
// int64 when integral and float64 otherwise. A JSON null leaves m nil.
func (m *Map) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("criteria must be a JSON object")
	}

	out := Map{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}

		var val any
		trimmed := bytes.TrimSpace(raw)
		if IsLogicalKey(key) && len(trimmed) > 0 && trimmed[0] == '{' {
			var sub Map
			if err := sub.UnmarshalJSON(trimmed); err != nil {
				return err
			}
			val = sub
		} else {
			vdec := json.NewDecoder(bytes.NewReader(trimmed))
			vdec.UseNumber()
			if err := vdec.Decode(&val); err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
			val = nativeNumbers(val)
		}
		out = append(out, Entry{Key: key, Value: val})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalJSON encodes the Map as a JSON object in declaration order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

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
