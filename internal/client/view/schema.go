package view

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownField   = errors.New("unknown field")
	ErrDuplicateField = errors.New("duplicate field")
)

// Field describes one column of a record type.
type Field[T any] struct {
	Name  string
	Value func(T) Value
	// Searchable fields take part in filtering, through Text when set and
	// through the string form of Value otherwise.
	Searchable bool
	Text       func(T) string
}

func (f Field[T]) text(r T) string {
	if f.Text != nil {
		return f.Text(r)
	}
	return f.Value(r).String()
}

// Schema is an ordered, name-indexed set of fields.
type Schema[T any] struct {
	fields []Field[T]
	index  map[string]int
}

// NewSchema panics on a duplicate or unnamed field; schemas are package
// level declarations.
func NewSchema[T any](fields ...Field[T]) Schema[T] {
	s := Schema[T]{fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		if f.Name == "" || f.Value == nil {
			panic(fmt.Sprintf("view: field %d is missing a name or value", i))
		}
		if _, dup := s.index[f.Name]; dup {
			panic(fmt.Errorf("view: %w %q", ErrDuplicateField, f.Name))
		}
		s.index[f.Name] = i
	}
	return s
}

// Field looks up a field by name.
func (s Schema[T]) Field(name string) (Field[T], error) {
	i, ok := s.index[name]
	if !ok {
		return Field[T]{}, fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	return s.fields[i], nil
}

// Names returns field names in declaration order.
func (s Schema[T]) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}
