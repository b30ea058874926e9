package ops

import (
	"github.com/pkg/errors"

	"github.com/born-ml/tensorjo/internal/tensor"
)

// MSEAxis is the axis mean squared error reduces over.
const MSEAxis = 1

// MSEOp represents mean squared error along axis 1: output = mean((a-b)², axis=1).
//
// Inputs broadcast together and the broadcast shape must have rank >= 2.
// The output drops axis 1.
//
// Backward pass, with n the size of axis 1:
//   - d/da = 2(a-b)/n
//   - d/db = -2(a-b)/n
type MSEOp struct {
	a, b  *tensor.Tensor
	diff  *tensor.Tensor
	c     *tensor.Tensor
	shape tensor.Shape
}

// NewMSEOp creates a new MSEOp.
func NewMSEOp(a, b *tensor.Tensor) (*MSEOp, error) {
	if a == nil || b == nil {
		return nil, errors.Wrap(tensor.ErrValidation, "failed to construct mse op: nil input")
	}
	in, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to construct mse op with tensors of shape %v and %v",
			a.Shape(), b.Shape())
	}
	if len(in) <= MSEAxis {
		return nil, errors.Wrapf(tensor.ErrValidation,
			"failed to construct mse op: shape %v has no axis %d", in, MSEAxis)
	}
	op := &MSEOp{}
	if _, err := op.Forward(a, b); err != nil {
		return nil, err
	}
	return op, nil
}

// Forward returns mean((a-b)², axis=1).
func (op *MSEOp) Forward(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	diff, err := tensor.Sub(a, b)
	if err != nil {
		return nil, err
	}
	sq, err := tensor.Mul(diff, diff)
	if err != nil {
		return nil, err
	}
	c, err := tensor.MeanAxis(sq, MSEAxis)
	if err != nil {
		return nil, err
	}
	op.a, op.b, op.diff, op.c = a, b, diff, c
	op.shape = c.Shape()
	return c, nil
}

func (op *MSEOp) n() float64 {
	return float64(op.diff.Shape()[MSEAxis])
}

// BackwardFirst returns 2(a-b)/n.
func (op *MSEOp) BackwardFirst() (*tensor.Tensor, error) {
	return tensor.Scale(op.diff, 2/op.n()), nil
}

// BackwardSecond returns -2(a-b)/n.
func (op *MSEOp) BackwardSecond() (*tensor.Tensor, error) {
	return tensor.Scale(op.diff, -2/op.n()), nil
}

// BackwardFirstFrom spreads upstream over axis 1 and scales it by 2(a-b)/n.
func (op *MSEOp) BackwardFirstFrom(upstream *tensor.Tensor) (*tensor.Tensor, error) {
	local, _ := op.BackwardFirst()
	return spreadAxis(upstream, op.shape, MSEAxis, local)
}

// BackwardSecondFrom spreads upstream over axis 1 and scales it by -2(a-b)/n.
func (op *MSEOp) BackwardSecondFrom(upstream *tensor.Tensor) (*tensor.Tensor, error) {
	local, _ := op.BackwardSecond()
	return spreadAxis(upstream, op.shape, MSEAxis, local)
}

// Cache returns the output of the last forward pass.
func (op *MSEOp) Cache() *tensor.Tensor {
	return op.c
}

// Shape returns the output shape.
func (op *MSEOp) Shape() tensor.Shape {
	return op.shape.Clone()
}

// Name returns "mse".
func (op *MSEOp) Name() string {
	return "mse"
}

// spreadAxis multiplies local by upstream, where upstream has the reduced
// shape out (local's shape without axis). A one-element upstream scales local.
func spreadAxis(upstream *tensor.Tensor, out tensor.Shape, axis int, local *tensor.Tensor) (*tensor.Tensor, error) {
	if upstream.Size() == 1 || !upstream.Shape().Equal(out) {
		return tensor.Mul(upstream, local)
	}
	expanded, err := tensor.ExpandAxis(upstream, axis, local.Shape()[axis])
	if err != nil {
		return nil, err
	}
	return tensor.Mul(expanded, local)
}
