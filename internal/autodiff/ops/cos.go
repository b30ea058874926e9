package ops

import "github.com/born-ml/tensorjo/internal/tensor"

// CosOp represents the cosine operation: y = cos(x).
//
// Backward pass: d(cos(x))/dx = -sin(x).
type CosOp struct {
	unary
}

// NewCosOp creates a new CosOp.
func NewCosOp(x *tensor.Tensor) (*CosOp, error) {
	op := &CosOp{}
	if _, err := op.Forward(x); err != nil {
		return nil, err
	}
	return op, nil
}

// Forward returns cos(x).
func (op *CosOp) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	return op.forward(op.Name(), x, tensor.Cos)
}

// BackwardFunctor returns -sin(x).
func (op *CosOp) BackwardFunctor() (*tensor.Tensor, error) {
	return tensor.Neg(tensor.Sin(op.x)), nil
}

// Name returns "cos".
func (op *CosOp) Name() string {
	return "cos"
}
