// Package tensor provides the validated numeric array that flows through a
// tensorjo computation graph.
//
// A Tensor is a dense, row-major float64 array with an immutable shape. Every
// operation returns a new Tensor; nothing in this package mutates its inputs.
package tensor

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// ErrValidation is returned (wrapped) whenever a tensor, shape or op cannot be
// built from the given input.
var ErrValidation = errors.New("validation error")

// Tensor is an immutable multidimensional float64 array.
type Tensor struct {
	shape Shape
	data  []float64
}

// New creates a tensor from a flat row-major slice.
// The slice is copied. Empty tensors and NaN values are rejected.
//
// Example:
//
//	t, err := tensor.New([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
func New(data []float64, shape Shape) (*Tensor, error) {
	if err := check(data, shape); err != nil {
		return nil, err
	}
	return &Tensor{shape: shape.Clone(), data: append([]float64(nil), data...)}, nil
}

// check validates that data fills shape and holds no NaN.
func check(data []float64, shape Shape) error {
	if err := shape.Validate(); err != nil {
		return errors.WithMessage(err, "invalid shape")
	}
	if len(data) == 0 {
		return errors.Wrap(ErrValidation, "tensor cannot be empty")
	}
	if shape.NumElements() != len(data) {
		return errors.Wrapf(ErrValidation, "shape %v requires %d elements, but got %d",
			shape, shape.NumElements(), len(data))
	}
	for i, v := range data {
		if math.IsNaN(v) {
			return errors.Wrapf(ErrValidation, "tensor contains NaN at flat index %d", i)
		}
	}
	return nil
}

// wrap builds a tensor around data without copying or validating it.
// Used for results computed inside this package, which may hold NaN
// (0/0 in Div, for instance); From rejects such tensors.
func wrap(data []float64, shape Shape) *Tensor {
	return &Tensor{shape: shape, data: data}
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape.Clone()
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Size returns the number of elements.
func (t *Tensor) Size() int {
	return len(t.data)
}

// Data returns a copy of the underlying row-major data.
func (t *Tensor) Data() []float64 {
	return append([]float64(nil), t.data...)
}

// At returns the element at the given coordinates.
// It panics if the coordinates are out of range, like slice indexing does.
func (t *Tensor) At(idx ...int) float64 {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("tensor.At: got %d indices for rank %d tensor", len(idx), len(t.shape)))
	}
	strides := t.shape.ComputeStrides()
	flat := 0
	for d, i := range idx {
		if i < 0 || i >= t.shape[d] {
			panic(fmt.Sprintf("tensor.At: index %d out of range for axis %d of size %d", i, d, t.shape[d]))
		}
		flat += i * strides[d]
	}
	return t.data[flat]
}

// Item returns the single element of a one-element tensor.
func (t *Tensor) Item() (float64, error) {
	if len(t.data) != 1 {
		return 0, errors.Wrapf(ErrValidation, "Item called on tensor of shape %v", t.shape)
	}
	return t.data[0], nil
}

// Equal reports whether both tensors have the same shape and elements.
func (t *Tensor) Equal(other *Tensor) bool {
	return t.AllClose(other, 0)
}

// AllClose reports whether both tensors have the same shape and every pair of
// elements differs by at most tol.
func (t *Tensor) AllClose(other *Tensor, tol float64) bool {
	if other == nil || !t.shape.Equal(other.shape) {
		return false
	}
	for i, v := range t.data {
		if math.Abs(v-other.data[i]) > tol {
			return false
		}
	}
	return true
}

// String renders the tensor as nested brackets, NumPy style.
func (t *Tensor) String() string {
	if len(t.shape) == 0 {
		return fmt.Sprint(t.data[0])
	}
	var sb strings.Builder
	t.format(&sb, 0, 0)
	return sb.String()
}

func (t *Tensor) format(sb *strings.Builder, axis, offset int) {
	strides := t.shape.ComputeStrides()
	sb.WriteByte('[')
	for i := 0; i < t.shape[axis]; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if axis == len(t.shape)-1 {
			fmt.Fprint(sb, t.data[offset+i])
			continue
		}
		t.format(sb, axis+1, offset+i*strides[axis])
	}
	sb.WriteByte(']')
}
