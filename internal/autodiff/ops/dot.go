package ops

import (
	"github.com/pkg/errors"

	"github.com/born-ml/tensorjo/internal/tensor"
)

// DotOp represents the rank-2 matrix product: output = a @ b.
//
// Backward pass (sensitivity of sum(a @ b)):
//   - d/da[:, i] = sum(b[i, :])
//   - d/db[i, :] = sum(a[:, i])
//
// With an upstream gradient G these generalize to G @ bᵀ and aᵀ @ G.
type DotOp struct {
	a, b  *tensor.Tensor
	c     *tensor.Tensor
	shape tensor.Shape
}

// NewDotOp creates a new DotOp. Both inputs must be rank-2 with matching
// inner dimensions.
func NewDotOp(a, b *tensor.Tensor) (*DotOp, error) {
	if a == nil || b == nil {
		return nil, errors.Wrap(tensor.ErrValidation, "failed to construct dot op: nil input")
	}
	if a.Rank() != 2 || b.Rank() != 2 {
		return nil, errors.Wrapf(tensor.ErrValidation,
			"dot product with tensor of dim < 2 is not supported: got %v and %v", a.Shape(), b.Shape())
	}
	if _, err := tensor.MatMulShape(a.Shape(), b.Shape()); err != nil {
		return nil, errors.WithMessage(err, "failed to construct dot op")
	}
	op := &DotOp{}
	if _, err := op.Forward(a, b); err != nil {
		return nil, err
	}
	return op, nil
}

// Forward returns a @ b.
func (op *DotOp) Forward(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	c, err := tensor.MatMul(a, b)
	if err != nil {
		return nil, err
	}
	op.a, op.b, op.c = a, b, c
	op.shape = c.Shape()
	return c, nil
}

// BackwardFirst returns the matrix with column i filled with sum(b[i, :]).
func (op *DotOp) BackwardFirst() (*tensor.Tensor, error) {
	return op.BackwardFirstFrom(tensor.Ones(op.shape))
}

// BackwardSecond returns the matrix with row i filled with sum(a[:, i]).
func (op *DotOp) BackwardSecond() (*tensor.Tensor, error) {
	return op.BackwardSecondFrom(tensor.Ones(op.shape))
}

// BackwardFirstFrom returns upstream @ bᵀ.
func (op *DotOp) BackwardFirstFrom(upstream *tensor.Tensor) (*tensor.Tensor, error) {
	upstream, err := tensor.BroadcastTo(upstream, op.shape)
	if err != nil {
		return nil, err
	}
	bT, err := tensor.Transpose(op.b)
	if err != nil {
		return nil, err
	}
	return tensor.MatMul(upstream, bT)
}

// BackwardSecondFrom returns aᵀ @ upstream.
func (op *DotOp) BackwardSecondFrom(upstream *tensor.Tensor) (*tensor.Tensor, error) {
	upstream, err := tensor.BroadcastTo(upstream, op.shape)
	if err != nil {
		return nil, err
	}
	aT, err := tensor.Transpose(op.a)
	if err != nil {
		return nil, err
	}
	return tensor.MatMul(aT, upstream)
}

// Cache returns the output of the last forward pass.
func (op *DotOp) Cache() *tensor.Tensor {
	return op.c
}

// Shape returns the output shape.
func (op *DotOp) Shape() tensor.Shape {
	return op.shape.Clone()
}

// Name returns "dot".
func (op *DotOp) Name() string {
	return "dot"
}
