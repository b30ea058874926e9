// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tensorjo/internal/tensor"
)

// Tensor is an immutable n-dimensional float64 array.
type Tensor = tensor.Tensor

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// ErrValidation is wrapped by every error caused by invalid input.
var ErrValidation = tensor.ErrValidation

// New creates a tensor from a flat row-major slice. The slice is copied.
func New(data []float64, shape Shape) (*Tensor, error) {
	return tensor.New(data, shape)
}

// From converts a scalar, a nested slice or array, or a *Tensor to a tensor.
//
// Example:
//
//	t, err := tensor.From([][]float64{{1, 2, 3}, {4, 5, 6}}) // shape (2, 3)
func From(v any) (*Tensor, error) {
	return tensor.From(v)
}

// MustFrom is like From but panics on error.
func MustFrom(v any) *Tensor {
	return tensor.MustFrom(v)
}

// Creation functions.
var (
	Scalar    = tensor.Scalar
	Full      = tensor.Full
	Zeros     = tensor.Zeros
	Ones      = tensor.Ones
	ZerosLike = tensor.ZerosLike
	OnesLike  = tensor.OnesLike
	Arange    = tensor.Arange
)

// Elementwise operations with broadcasting.
var (
	Add = tensor.Add
	Sub = tensor.Sub
	Mul = tensor.Mul
	Div = tensor.Div
)

// Shape manipulation, reductions and matrix products.
var (
	BroadcastShapes = tensor.BroadcastShapes
	BroadcastTo     = tensor.BroadcastTo
	Reshape         = tensor.Reshape
	Sum             = tensor.Sum
	Mean            = tensor.Mean
	SumAxis         = tensor.SumAxis
	MeanAxis        = tensor.MeanAxis
	MatMul          = tensor.MatMul
	Transpose       = tensor.Transpose
)
