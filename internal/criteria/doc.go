// Package criteria parses the map-based criteria syntax into a typed
// predicate tree.
//
// A criteria mapping is an ordered list of key/value entries (Map). Keys
// carry the operator as a bracketed suffix tag and the encoding as an
// optional prefix:
//
//	"id"            equals, IN for a list, IS NULL for nil
//	"id[!]"         not equals, NOT IN, IS NOT NULL
//	"id[>]"         also [>=] [<] [<=]
//	"age[<>]"       BETWEEN, value must be [low, high]
//	"age[><]"       NOT BETWEEN
//	"name[~]"       LIKE, [!~] for NOT LIKE
//	"(JSON)meta"    value encoded as JSON text
//	"AND" / "OR"    nested mapping whose entries combine with that operator
//	"OR #second"    same as "OR"; the comment keeps keys unique
//
// Update mappings (SET) accept the arithmetic tags [+] [-] [*] [/].
//
// ParseKey is the only function that looks inside key text. Everything
// downstream works on ColumnKey and the sealed Node types.
//
// SEALED INTERFACES:
//
// Node is sealed with a marker method, so the SQL renderer can switch
// exhaustively over Comparison, Between, In, Null, Like and Group.
package criteria
