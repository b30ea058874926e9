package ops

import (
	"github.com/pkg/errors"

	"github.com/born-ml/tensorjo/internal/tensor"
)

// elementwise holds the state shared by the broadcasting binary ops.
type elementwise struct {
	a, b  *tensor.Tensor // inputs of the last forward pass
	c     *tensor.Tensor // output of the last forward pass
	shape tensor.Shape
}

// init validates that a and b broadcast together and runs the first forward.
func (e *elementwise) init(name string, a, b *tensor.Tensor, f func(a, b *tensor.Tensor) (*tensor.Tensor, error)) error {
	if a == nil || b == nil {
		return errors.Wrapf(tensor.ErrValidation, "failed to construct %s op: nil input", name)
	}
	if _, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape()); err != nil {
		return errors.WithMessagef(err, "failed to construct %s op with tensors of shape %v and %v",
			name, a.Shape(), b.Shape())
	}
	_, err := e.forward(a, b, f)
	return err
}

func (e *elementwise) forward(a, b *tensor.Tensor, f func(a, b *tensor.Tensor) (*tensor.Tensor, error)) (*tensor.Tensor, error) {
	c, err := f(a, b)
	if err != nil {
		return nil, err
	}
	e.a, e.b, e.c = a, b, c
	e.shape = c.Shape()
	return c, nil
}

// Cache returns the output of the last forward pass.
func (e *elementwise) Cache() *tensor.Tensor {
	return e.c
}

// Shape returns the output shape.
func (e *elementwise) Shape() tensor.Shape {
	return e.shape.Clone()
}

// unary holds the state shared by the elementwise unary ops.
type unary struct {
	x     *tensor.Tensor
	c     *tensor.Tensor
	shape tensor.Shape
}

func (u *unary) forward(name string, x *tensor.Tensor, f func(*tensor.Tensor) *tensor.Tensor) (*tensor.Tensor, error) {
	if x == nil {
		return nil, errors.Wrapf(tensor.ErrValidation, "%s: input tensor is nil", name)
	}
	u.x = x
	u.c = f(x)
	u.shape = u.c.Shape()
	return u.c, nil
}

// Cache returns the output of the last forward pass.
func (u *unary) Cache() *tensor.Tensor {
	return u.c
}

// Shape returns the output shape.
func (u *unary) Shape() tensor.Shape {
	return u.shape.Clone()
}
