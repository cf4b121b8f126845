package entities

import "strings"

// RawRow is one loosely-typed source line keyed by lower-cased header name.
// It only lives between parsing and validation.
type RawRow struct {
	Line   int
	Fields map[string]string
}

// Get returns the trimmed value of the first present key
func (r RawRow) Get(keys ...string) string {
	for _, key := range keys {
		if value, ok := r.Fields[key]; ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
