package validation

import (
	"sort"
	"strings"
)

// Error is a field → message set returned by use cases that validate input
// themselves. Handlers render Fields as the response body.
type Error struct {
	Fields map[string]string
}

func NewError(field, msg string) *Error {
	return &Error{Fields: map[string]string{field: msg}}
}

// FromValidator converts validator failures into an *Error.
func FromValidator(err error) *Error {
	return &Error{Fields: ErrorsToMessages(err)}
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
