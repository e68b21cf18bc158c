package dto

import "encoding/json"

// Optional distinguishes a JSON field that was omitted from one that was
// explicitly null and one that carries a value. A missing field leaves the
// stored value untouched, an explicit null clears it, a value sets it.
type Optional[T any] struct {
	Present bool
	Value   *T
}

// UnmarshalJSON is only invoked when the field appears in the payload, so
// Present is true for both null and concrete values.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MarshalJSON round-trips the value; an absent Optional marshals as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Cleared reports whether the caller explicitly asked to clear the field.
func (o Optional[T]) Cleared() bool {
	return o.Present && o.Value == nil
}
