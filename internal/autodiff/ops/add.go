package ops

import "github.com/born-ml/tensorjo/internal/tensor"

// AddOp represents an element-wise addition operation: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1
//   - d(a+b)/db = 1
//
// Both derivatives are returned in the broadcast output shape; the chain rule
// sums them back to each input's shape.
type AddOp struct {
	elementwise
}

// NewAddOp creates a new AddOp, validating that a and b broadcast together.
func NewAddOp(a, b *tensor.Tensor) (*AddOp, error) {
	op := &AddOp{}
	if err := op.init(op.Name(), a, b, tensor.Add); err != nil {
		return nil, err
	}
	return op, nil
}

// Forward returns a + b.
func (op *AddOp) Forward(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return op.forward(a, b, tensor.Add)
}

// BackwardFirst returns ones.
func (op *AddOp) BackwardFirst() (*tensor.Tensor, error) {
	return tensor.Ones(op.shape), nil
}

// BackwardSecond returns ones.
func (op *AddOp) BackwardSecond() (*tensor.Tensor, error) {
	return tensor.Ones(op.shape), nil
}

// Name returns "addition".
func (op *AddOp) Name() string {
	return "addition"
}
