// Package query provides the fluent statement builder.
//
// A Builder owns one statement draft. Calls mutate the draft and return the
// same Builder, so a statement reads as one chain:
//
//	stmt, err := query.New().
//		Select("name", "email").
//		From("users").
//		Where(criteria.M("id[>]", 100)).
//		Limit(10).
//		Compile()
//
// The first error raised by any call is held and returned by the terminal
// call (Compile, Query, Exec); later calls are ignored. Clear resets the
// draft and the held error so the Builder can be reused.
//
// A Builder is not safe for concurrent use. Use one builder per logical
// query.
package query
