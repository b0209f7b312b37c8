package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Optional records whether a JSON field was present in a request body and
// whether it carried a non-null value.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Inner T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Inner: v}
}

// Value returns the held value and true when the field was present and non-null.
func (o Optional[T]) Value() (T, bool) {
	if !o.Set || o.Null {
		var zero T
		return zero, false
	}
	return o.Inner, true
}

// UnmarshalJSON is only invoked for keys present in the document.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Inner)
}

// UnmarshalParam is only invoked for form keys present in the request. The
// literal "null" clears the field the same way JSON null does.
func (o *Optional[T]) UnmarshalParam(param string) error {
	o.Set = true
	if param == "null" {
		o.Null = true
		return nil
	}
	switch p := any(&o.Inner).(type) {
	case *string:
		*p = param
		return nil
	case *bool:
		v, err := strconv.ParseBool(param)
		if err != nil {
			return err
		}
		*p = v
		return nil
	}
	return json.Unmarshal([]byte(param), &o.Inner)
}

// MarshalJSON encodes an absent or null Optional as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if v, ok := o.Value(); ok {
		return json.Marshal(v)
	}
	return []byte("null"), nil
}
