// Package value turns arbitrary Go values into the representation they take
// in a compiled statement.
//
// Every operand that reaches the SQL compiler is an Encoded value. This is a
// sealed interface with four implementations:
//
//   - Raw: a scalar bound as-is (NULL, int64, uint64, float64, string,
//     []byte, time.Time). Booleans are normalized to 1/0.
//   - JSON: sorted-key JSON text, produced for keys tagged (JSON).
//   - Serialized: YAML text, produced for structured values (slices, maps,
//     structs) without an explicit tag.
//   - Expr: a raw SQL expression copied into the statement verbatim.
//
// Encoded values are bound to placeholders through Arg. Literal renders the
// display form used when a statement is printed with its values inlined.
//
// JSON and Serialized text are deterministic: object keys are sorted, so the
// same input always produces the same bytes. Strings are kept as given and
// must be valid UTF-8.
package value
