// Package sqlgen renders parsed criteria into SQL fragments.
//
// Rendering is split from parsing: package criteria turns mappings into a
// typed predicate tree and this package walks that tree with a type switch.
// Every operand is handed to an Args binder, which either records it and
// returns a placeholder, or (in inline mode) returns a display literal.
// Execution always uses placeholders.
//
// Output follows MySQL conventions by default:
//
//	`id`>? AND `name` IN(?, ?)
//	`money`=(`money`+?), `name`=?
//	LIMIT 10, 5
//
// Other quoting and placeholder styles are provided by Dialect.
package sqlgen
