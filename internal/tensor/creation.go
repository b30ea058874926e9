package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// Scalar creates a rank-0 tensor.
func Scalar(v float64) *Tensor {
	return wrap([]float64{v}, Shape{})
}

// Full creates a tensor filled with a specific value.
// It panics on an invalid shape; shapes taken from existing tensors are always valid.
//
// Example:
//
//	t := tensor.Full(tensor.Shape{2, 3}, 0.5)
func Full(shape Shape, value float64) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor.Full: %v", err))
	}
	data := make([]float64, shape.NumElements())
	for i := range data {
		data[i] = value
	}
	return wrap(data, shape.Clone())
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return Full(shape, 0)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// OnesLike creates a tensor of ones with the shape of t.
func OnesLike(t *Tensor) *Tensor {
	return Full(t.shape, 1)
}

// ZerosLike creates a tensor of zeros with the shape of t.
func ZerosLike(t *Tensor) *Tensor {
	return Full(t.shape, 0)
}

// Arange returns the 1-D tensor [start, start+1, ..., stop-1].
func Arange(start, stop int) (*Tensor, error) {
	if stop <= start {
		return nil, errors.Wrapf(ErrValidation, "arange [%d, %d) is empty", start, stop)
	}
	data := make([]float64, stop-start)
	for i := range data {
		data[i] = float64(start + i)
	}
	return wrap(data, Shape{len(data)}), nil
}
