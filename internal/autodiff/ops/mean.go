package ops

import (
	"github.com/pkg/errors"

	"github.com/born-ml/tensorjo/internal/tensor"
)

// MeanOp averages its input along one axis, dropping that axis.
//
// Backward pass: every input element contributes 1/n, n the size of the axis.
type MeanOp struct {
	axis  int
	x     *tensor.Tensor
	c     *tensor.Tensor
	shape tensor.Shape
}

// NewMeanOp creates a new MeanOp over axis.
func NewMeanOp(x *tensor.Tensor, axis int) (*MeanOp, error) {
	if x == nil {
		return nil, errors.Wrap(tensor.ErrValidation, "failed to construct mean op: nil input")
	}
	if axis < 0 || axis >= x.Rank() {
		return nil, errors.Wrapf(tensor.ErrValidation,
			"failed to construct mean op: axis %d out of range for shape %v", axis, x.Shape())
	}
	op := &MeanOp{axis: axis}
	if _, err := op.Forward(x); err != nil {
		return nil, err
	}
	return op, nil
}

// Mean returns a constructor for MeanOp over axis.
func Mean(axis int) UnaryConstructor {
	return Unary(func(x *tensor.Tensor) (*MeanOp, error) {
		return NewMeanOp(x, axis)
	})
}

// Forward returns mean(x, axis).
func (op *MeanOp) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if x == nil {
		return nil, errors.Wrap(tensor.ErrValidation, "mean: input tensor is nil")
	}
	c, err := tensor.MeanAxis(x, op.axis)
	if err != nil {
		return nil, err
	}
	op.x, op.c = x, c
	op.shape = c.Shape()
	return c, nil
}

// BackwardFunctor returns 1/n in the input's shape.
func (op *MeanOp) BackwardFunctor() (*tensor.Tensor, error) {
	shape := op.x.Shape()
	return tensor.Full(shape, 1/float64(shape[op.axis])), nil
}

// BackwardFunctorFrom spreads upstream over the reduced axis and scales it by 1/n.
func (op *MeanOp) BackwardFunctorFrom(upstream *tensor.Tensor) (*tensor.Tensor, error) {
	local, _ := op.BackwardFunctor()
	return spreadAxis(upstream, op.shape, op.axis, local)
}

// Axis returns the reduced axis.
func (op *MeanOp) Axis() int {
	return op.axis
}

// Cache returns the output of the last forward pass.
func (op *MeanOp) Cache() *tensor.Tensor {
	return op.c
}

// Shape returns the output shape.
func (op *MeanOp) Shape() tensor.Shape {
	return op.shape.Clone()
}

// Name returns "mean".
func (op *MeanOp) Name() string {
	return "mean"
}
