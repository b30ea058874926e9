package ops

import "github.com/born-ml/tensorjo/internal/tensor"

// SubOp represents an element-wise subtraction operation: output = a - b.
//
// Backward pass:
//   - d(a-b)/da = 1
//   - d(a-b)/db = -1
type SubOp struct {
	elementwise
}

// NewSubOp creates a new SubOp.
func NewSubOp(a, b *tensor.Tensor) (*SubOp, error) {
	op := &SubOp{}
	if err := op.init(op.Name(), a, b, tensor.Sub); err != nil {
		return nil, err
	}
	return op, nil
}

// Forward returns a - b.
func (op *SubOp) Forward(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return op.forward(a, b, tensor.Sub)
}

// BackwardFirst returns ones.
func (op *SubOp) BackwardFirst() (*tensor.Tensor, error) {
	return tensor.Ones(op.shape), nil
}

// BackwardSecond returns minus ones.
func (op *SubOp) BackwardSecond() (*tensor.Tensor, error) {
	return tensor.Full(op.shape, -1), nil
}

// Name returns "subtraction".
func (op *SubOp) Name() string {
	return "subtraction"
}
