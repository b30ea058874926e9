package ops

import "github.com/born-ml/tensorjo/internal/tensor"

// SinOp represents the sine operation: y = sin(x).
//
// Backward pass: d(sin(x))/dx = cos(x).
type SinOp struct {
	unary
}

// NewSinOp creates a new SinOp.
func NewSinOp(x *tensor.Tensor) (*SinOp, error) {
	op := &SinOp{}
	if _, err := op.Forward(x); err != nil {
		return nil, err
	}
	return op, nil
}

// Forward returns sin(x).
func (op *SinOp) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	return op.forward(op.Name(), x, tensor.Sin)
}

// BackwardFunctor returns cos(x).
func (op *SinOp) BackwardFunctor() (*tensor.Tensor, error) {
	return tensor.Cos(op.x), nil
}

// Name returns "sin".
func (op *SinOp) Name() string {
	return "sin"
}
