// Package interchange converts host values to and from the neutral
// structured form that crosses the host/guest boundary.
//
// A well-formed interchange value is one of:
//
//	nil | bool | float64 | string | []any | map[string]any
//
// where every element of a slice or map is itself well-formed. This is
// exactly the shape encoding/json produces when decoding into any, so
// guest-serialized text and host-built values meet in the same form.
package interchange

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnsupportedType is returned by FromHost for host values that have no
// interchange representation.
var ErrUnsupportedType = errors.New("unsupported type")

// Value is a well-formed interchange value. The concrete type is always
// one of nil, bool, float64, string, []any, or map[string]any.
type Value = any

// FromHost maps a host value into the interchange form. Numeric types
// collapse to float64, slices and arrays to []any, string-keyed maps to
// map[string]any. Pointers and interfaces are dereferenced; a nil pointer
// maps to nil. Anything else (funcs, channels, structs, complex numbers,
// maps with non-string keys) is unsupported.
func FromHost(v any) (Value, error) {
	if v == nil {
		return nil, nil
	}

	switch x := v.(type) {
	case bool, float64, string:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return FromHost(rv.Elem().Interface())

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, err := FromHost(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = elem
		}
		return out, nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map with %s keys", ErrUnsupportedType, rv.Type().Key().Kind())
		}
		if rv.IsNil() {
			return nil, nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			elem, err := FromHost(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			out[key] = elem
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

// ToHost maps an interchange value back to a host value. It is total over
// well-formed input; since the interchange form already uses host-native
// types this is the identity.
func ToHost(v Value) any {
	return v
}
