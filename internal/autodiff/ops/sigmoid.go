package ops

import "github.com/born-ml/tensorjo/internal/tensor"

// SigmoidOp represents the sigmoid activation: σ(x) = 1 / (1 + exp(-x)).
//
// The forward output is kept so the backward pass is σ(x) * (1 - σ(x)).
type SigmoidOp struct {
	unary
}

// NewSigmoidOp creates a new sigmoid operation.
func NewSigmoidOp(x *tensor.Tensor) (*SigmoidOp, error) {
	op := &SigmoidOp{}
	if _, err := op.Forward(x); err != nil {
		return nil, err
	}
	return op, nil
}

// Forward returns σ(x).
func (op *SigmoidOp) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	return op.forward(op.Name(), x, tensor.Sigmoid)
}

// BackwardFunctor returns σ(x) * (1 - σ(x)).
func (op *SigmoidOp) BackwardFunctor() (*tensor.Tensor, error) {
	return tensor.Map(op.c, func(s float64) float64 { return s * (1 - s) }), nil
}

// Name returns "sigmoid".
func (op *SigmoidOp) Name() string {
	return "sigmoid"
}
