// Package querydoc loads statement documents: one SQL statement described
// as data, in YAML, JSON or CUE.
//
//	kind: select
//	table: users
//	columns: [name, email]
//	where:
//	  id[>]: 100
//	  OR:
//	    name[~]: ann
//	    money[<>]: [10, 20]
//	order:
//	  - {column: id, direction: desc}
//	limit: [20, 10]
//
// Mapping order is preserved in all three formats, so criteria keep their
// declaration order. A Document turns into a query.Builder with Build.
package querydoc
