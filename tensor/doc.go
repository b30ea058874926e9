// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the immutable float64 arrays flowing through a
// tensorjo graph.
//
// # Overview
//
// This package provides:
//   - Tensor: an immutable, row-major float64 array of any rank
//   - Shape with NumPy-style broadcasting rules
//   - Elementwise arithmetic, reductions and matrix products
//   - From: conversion of Go scalars and nested slices to tensors
//
// # Basic Usage
//
//	import "github.com/born-ml/tensorjo/tensor"
//
//	func main() {
//	    x, _ := tensor.From([][]float64{{1, 2}, {3, 4}})
//	    y := tensor.Ones(tensor.Shape{1, 2})
//
//	    z, _ := tensor.Add(x, y) // y is broadcast across rows
//	    fmt.Println(z)           // [[2 3] [4 5]]
//	}
//
// # Validation
//
// Every constructor rejects empty input, mismatched lengths and NaN values
// with an error wrapping ErrValidation:
//
//	if _, err := tensor.From([][]float64{{1, 2}, {3}}); errors.Is(err, tensor.ErrValidation) {
//	    // ragged input
//	}
package tensor
