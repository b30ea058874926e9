package tensor

import (
	"math"

	"github.com/pkg/errors"
)

// binary applies f elementwise with NumPy-style broadcasting.
func binary(name string, a, b *Tensor, f func(x, y float64) float64) (*Tensor, error) {
	if a == nil || b == nil {
		return nil, errors.Wrapf(ErrValidation, "%s: input tensor is nil", name)
	}
	out, needsBroadcast, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}

	data := make([]float64, out.NumElements())
	if !needsBroadcast {
		for i := range data {
			data[i] = f(a.data[i], b.data[i])
		}
		return wrap(data, out), nil
	}

	outStrides := out.ComputeStrides()
	aStrides := a.shape.ComputeStrides()
	bStrides := b.shape.ComputeStrides()
	for i := range data {
		ai := broadcastIndex(i, out, outStrides, a.shape, aStrides)
		bi := broadcastIndex(i, out, outStrides, b.shape, bStrides)
		data[i] = f(a.data[ai], b.data[bi])
	}
	return wrap(data, out), nil
}

// Add returns a + b.
func Add(a, b *Tensor) (*Tensor, error) {
	return binary("Add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub returns a - b.
func Sub(a, b *Tensor) (*Tensor, error) {
	return binary("Sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul returns the elementwise product a * b.
func Mul(a, b *Tensor) (*Tensor, error) {
	return binary("Mul", a, b, func(x, y float64) float64 { return x * y })
}

// Div returns the elementwise quotient a / b. Division by zero follows IEEE 754.
func Div(a, b *Tensor) (*Tensor, error) {
	return binary("Div", a, b, func(x, y float64) float64 { return x / y })
}

// BroadcastTo expands t to shape using broadcasting rules.
func BroadcastTo(t *Tensor, shape Shape) (*Tensor, error) {
	out, _, err := BroadcastShapes(t.shape, shape)
	if err != nil {
		return nil, errors.WithMessage(err, "BroadcastTo")
	}
	if !out.Equal(shape) {
		return nil, errors.Wrapf(ErrValidation, "BroadcastTo: cannot broadcast %v to %v", t.shape, shape)
	}
	return Mul(t, Ones(shape))
}

// Map applies f to every element.
func Map(t *Tensor, f func(float64) float64) *Tensor {
	data := make([]float64, len(t.data))
	for i, v := range t.data {
		data[i] = f(v)
	}
	return wrap(data, t.shape.Clone())
}

// Scale returns t * s.
func Scale(t *Tensor, s float64) *Tensor {
	return Map(t, func(v float64) float64 { return v * s })
}

// AddScalar returns t + s.
func AddScalar(t *Tensor, s float64) *Tensor {
	return Map(t, func(v float64) float64 { return v + s })
}

// Neg returns -t.
func Neg(t *Tensor) *Tensor {
	return Scale(t, -1)
}

// Sigmoid returns 1 / (1 + exp(-t)).
func Sigmoid(t *Tensor) *Tensor {
	return Map(t, func(v float64) float64 { return 1 / (1 + math.Exp(-v)) })
}

// Sin returns sin(t).
func Sin(t *Tensor) *Tensor {
	return Map(t, math.Sin)
}

// Cos returns cos(t).
func Cos(t *Tensor) *Tensor {
	return Map(t, math.Cos)
}

// Reshape returns a tensor with the same data and a new shape.
func Reshape(t *Tensor, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.WithMessage(err, "Reshape")
	}
	if shape.NumElements() != len(t.data) {
		return nil, errors.Wrapf(ErrValidation, "Reshape: cannot reshape %v into %v", t.shape, shape)
	}
	return wrap(t.data, shape.Clone()), nil
}
