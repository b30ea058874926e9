package ops

import "github.com/born-ml/tensorjo/internal/tensor"

// MulOp represents an element-wise multiplication operation: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b
//   - d(a*b)/db = a
type MulOp struct {
	elementwise
}

// NewMulOp creates a new MulOp.
func NewMulOp(a, b *tensor.Tensor) (*MulOp, error) {
	op := &MulOp{}
	if err := op.init(op.Name(), a, b, tensor.Mul); err != nil {
		return nil, err
	}
	return op, nil
}

// Forward returns a * b.
func (op *MulOp) Forward(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return op.forward(a, b, tensor.Mul)
}

// BackwardFirst returns b, broadcast to the output shape.
func (op *MulOp) BackwardFirst() (*tensor.Tensor, error) {
	return tensor.BroadcastTo(op.b, op.shape)
}

// BackwardSecond returns a, broadcast to the output shape.
func (op *MulOp) BackwardSecond() (*tensor.Tensor, error) {
	return tensor.BroadcastTo(op.a, op.shape)
}

// Name returns "multiplication".
func (op *MulOp) Name() string {
	return "multiplication"
}
