package tensor

import (
	"math"
	"reflect"

	"github.com/pkg/errors"
)

// From converts a Go value into a Tensor.
//
// Accepted inputs:
//   - *Tensor or Tensor (returned as is once checked; tensors are immutable)
//   - any integer, unsigned or floating point scalar (rank-0 tensor)
//   - nested slices or arrays of numbers, including []any, as long as the
//     nesting is rectangular and every leaf is a number
//
// Rejected with ErrValidation: nil, strings, []byte, booleans, empty
// sequences, ragged or heterogeneous nesting, and NaN.
//
// Example:
//
//	t, err := tensor.From([][]float64{{1, 2}, {3, 4}}) // shape (2, 2)
func From(v any) (*Tensor, error) {
	switch x := v.(type) {
	case nil:
		return nil, errors.Wrap(ErrValidation, "cannot build tensor from nil")
	case *Tensor:
		if x == nil {
			return nil, errors.Wrap(ErrValidation, "cannot build tensor from nil *Tensor")
		}
		if err := check(x.data, x.shape); err != nil {
			return nil, err
		}
		return x, nil
	case Tensor:
		return From(&x)
	case string:
		return nil, errors.Wrapf(ErrValidation, "invalid tensor type string %q, please convert it into a float or float array", x)
	case []byte:
		return nil, errors.Wrapf(ErrValidation, "invalid tensor type []byte %v, please convert it into a float or float array", x)
	}

	var data []float64
	shape, err := inferShape(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	data = make([]float64, 0, shape.NumElements())
	data, err = flatten(reflect.ValueOf(v), data)
	if err != nil {
		return nil, err
	}
	return New(data, shape)
}

// MustFrom is like From but panics on error. Intended for tests and literals.
func MustFrom(v any) *Tensor {
	t, err := From(v)
	if err != nil {
		panic(err)
	}
	return t
}

// inferShape walks the first element at each depth to find the shape.
// flatten later checks that every other element agrees with it.
func inferShape(v reflect.Value) (Shape, error) {
	v = deref(v)
	if !v.IsValid() {
		return nil, errors.Wrap(ErrValidation, "cannot build tensor from nil element")
	}
	if isNumber(v.Kind()) {
		return Shape{}, nil
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, errors.Wrapf(ErrValidation, "invalid tensor element type %s", v.Type())
	}
	if v.Type().Elem().Kind() == reflect.Uint8 && v.Kind() == reflect.Slice {
		return nil, errors.Wrap(ErrValidation, "cannot build tensor from bytes")
	}
	if v.Len() == 0 {
		return nil, errors.Wrap(ErrValidation, "tensor cannot be built from an empty sequence")
	}
	inner, err := inferShape(v.Index(0))
	if err != nil {
		return nil, err
	}
	return append(Shape{v.Len()}, inner...), nil
}

func flatten(v reflect.Value, data []float64) ([]float64, error) {
	v = deref(v)
	if !v.IsValid() {
		return nil, errors.Wrap(ErrValidation, "cannot build tensor from nil element")
	}
	switch k := v.Kind(); {
	case k >= reflect.Int && k <= reflect.Int64:
		return append(data, float64(v.Int())), nil
	case k >= reflect.Uint && k <= reflect.Uintptr:
		return append(data, float64(v.Uint())), nil
	case k == reflect.Float32 || k == reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) {
			return nil, errors.Wrap(ErrValidation, "tensor cannot contain NaN")
		}
		return append(data, f), nil
	case k == reflect.Slice || k == reflect.Array:
		want, err := inferShape(v)
		if err != nil {
			return nil, err
		}
		for i := 0; i < v.Len(); i++ {
			got, err := inferShape(v.Index(i))
			if err != nil {
				return nil, err
			}
			if !got.Equal(want[1:]) {
				return nil, errors.Wrapf(ErrValidation,
					"ragged or heterogeneous sequence: element %d has shape %v, expected %v", i, got, want[1:])
			}
			if data, err = flatten(v.Index(i), data); err != nil {
				return nil, err
			}
		}
		return data, nil
	default:
		return nil, errors.Wrapf(ErrValidation, "invalid tensor element type %s", v.Type())
	}
}

// deref unwraps interfaces and pointers so []any and *float64 leaves work.
func deref(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
