package jsonschema

import (
	"errors"
	"fmt"
)

var (
	ErrCircularReference = errors.New("circular reference")
	ErrUnsupportedSchema = errors.New("unsupported schema")
)

// CircularReferenceError is returned when a value refers back to one of its own
// ancestors. Path locates the revisited value, e.g. "$.a.b[0]".
type CircularReferenceError struct {
	Path string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("cannot create schema: circular reference at %s", e.Path)
}

func (e *CircularReferenceError) Is(target error) bool {
	return target == ErrCircularReference
}
