package model

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// TableName derives a table name from a Go type name: snake_case, with the
// last word pluralized.
//
//	TableName("User")        → "users"
//	TableName("UserProfile") → "user_profiles"
//	TableName("HTTPRequest") → "http_requests"
//	TableName("Person")      → "people"
func TableName(typeName string) string {
	return inflection.Plural(snakeCase(typeName))
}

// tableNameOf returns TableName of T's type name, looking through pointers.
func tableNameOf[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return TableName(t.Name())
}

func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
