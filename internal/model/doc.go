// Package model maps table rows to records on top of the statement builder.
//
// A Factory is bound to one table and one bridge. Finders build SELECTs
// through package query and hydrate each row into a Record, a column map
// with get/set access and dirty tracking. Save inserts new records and
// updates only the changed columns of existing ones.
//
// Configuration is explicit: every Factory gets its bridge and Config at
// construction and there is no package-level connection.
package model
