package model

import (
	"encoding/json"
)

// Optional is a JSON field that distinguishes an absent key, an explicit
// null and a value. A value of the wrong JSON type does not fail decoding of
// the surrounding object; it is kept in Err so every field can be reported.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
	Raw   json.RawMessage
	Err   error
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null returns a present Optional holding an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	o.Raw = append(o.Raw[:0], b...)

	if string(b) == "null" {
		o.Null = true
		return nil
	}

	if err := json.Unmarshal(b, &o.Value); err != nil {
		o.Err = err
	}
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Valid reports whether the field holds a usable value.
func (o Optional[T]) Valid() bool {
	return o.Set && !o.Null && o.Err == nil
}

// Ptr returns nil for absent or null fields, or a pointer to the value.
func (o Optional[T]) Ptr() *T {
	if !o.Valid() {
		return nil
	}
	v := o.Value
	return &v
}

// Interface returns a *T for usable values and nil otherwise, so that
// pointer-aware validators can tell an absent field from a zero value.
func (o Optional[T]) Interface() any {
	if !o.Valid() {
		return nil
	}
	v := o.Value
	return &v
}

// IsNull reports whether the field was sent as an explicit null.
func (o Optional[T]) IsNull() bool {
	return o.Set && o.Null
}

// DecodeErr returns the type mismatch recorded while decoding, if any.
func (o Optional[T]) DecodeErr() error {
	return o.Err
}

// RawValue returns the value as the client sent it, decoded loosely.
func (o Optional[T]) RawValue() any {
	if !o.Set || o.Null {
		return nil
	}
	if o.Err == nil {
		return o.Value
	}

	var v any
	if err := json.Unmarshal(o.Raw, &v); err != nil {
		return string(o.Raw)
	}
	return v
}
