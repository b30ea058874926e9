package ops

import (
	"github.com/pkg/errors"

	"github.com/born-ml/tensorjo/internal/tensor"
)

// MatMulOp represents a batched matrix multiplication: output = a @ b.
//
// Operands have equal rank >= 2; leading dimensions are batch dimensions.
// Gradients are not provided yet: both backward methods return
// ErrNotImplemented. Use DotOp for differentiable rank-2 products.
type MatMulOp struct {
	a, b  *tensor.Tensor
	c     *tensor.Tensor
	shape tensor.Shape
}

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b *tensor.Tensor) (*MatMulOp, error) {
	if a == nil || b == nil {
		return nil, errors.Wrap(tensor.ErrValidation, "failed to construct matmul op: nil input")
	}
	if _, err := tensor.MatMulShape(a.Shape(), b.Shape()); err != nil {
		return nil, errors.WithMessage(err, "failed to construct matmul op")
	}
	op := &MatMulOp{}
	if _, err := op.Forward(a, b); err != nil {
		return nil, err
	}
	return op, nil
}

// Forward returns a @ b.
func (op *MatMulOp) Forward(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	c, err := tensor.MatMul(a, b)
	if err != nil {
		return nil, err
	}
	op.a, op.b, op.c = a, b, c
	op.shape = c.Shape()
	return c, nil
}

// BackwardFirst is not implemented.
func (op *MatMulOp) BackwardFirst() (*tensor.Tensor, error) {
	return nil, errors.Wrap(ErrNotImplemented, "matmul backward (first input)")
}

// BackwardSecond is not implemented.
func (op *MatMulOp) BackwardSecond() (*tensor.Tensor, error) {
	return nil, errors.Wrap(ErrNotImplemented, "matmul backward (second input)")
}

// Cache returns the output of the last forward pass.
func (op *MatMulOp) Cache() *tensor.Tensor {
	return op.c
}

// Shape returns the output shape.
func (op *MatMulOp) Shape() tensor.Shape {
	return op.shape.Clone()
}

// Name returns "matmul".
func (op *MatMulOp) Name() string {
	return "matmul"
}
