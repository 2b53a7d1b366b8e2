package services

import "encoding/json"

// Field is a JSON value in a partial update.
// Set is true when the key was present; Null is true when it was present as null.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some builds a Field holding v
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null builds a Field that clears the column
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// Present reports whether the field carries a non-null value
func (f Field[T]) Present() bool {
	return f.Set && !f.Null
}
