package ops

import "github.com/born-ml/tensorjo/internal/tensor"

// DivEpsilon is added to denominators so the op never divides by exactly zero.
const DivEpsilon = 1e-15

// DivOp represents an element-wise division operation: output = a / (b + ε).
//
// Backward pass:
//   - d(a/b)/da = 1 / (b + ε)
//   - d(a/b)/db = -a / (b² + ε)
type DivOp struct {
	elementwise
}

// NewDivOp creates a new DivOp.
func NewDivOp(a, b *tensor.Tensor) (*DivOp, error) {
	op := &DivOp{}
	if err := op.init(op.Name(), a, b, divide); err != nil {
		return nil, err
	}
	return op, nil
}

func divide(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Div(a, tensor.AddScalar(b, DivEpsilon))
}

// Forward returns a / (b + ε).
func (op *DivOp) Forward(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return op.forward(a, b, divide)
}

// BackwardFirst returns 1 / (b + ε), broadcast to the output shape.
func (op *DivOp) BackwardFirst() (*tensor.Tensor, error) {
	inv := tensor.Map(op.b, func(v float64) float64 { return 1 / (v + DivEpsilon) })
	return tensor.BroadcastTo(inv, op.shape)
}

// BackwardSecond returns -a / (b² + ε), broadcast to the output shape.
func (op *DivOp) BackwardSecond() (*tensor.Tensor, error) {
	den := tensor.Map(op.b, func(v float64) float64 { return v*v + DivEpsilon })
	grad, err := tensor.Div(tensor.Neg(op.a), den)
	if err != nil {
		return nil, err
	}
	return tensor.BroadcastTo(grad, op.shape)
}

// Name returns "division".
func (op *DivOp) Name() string {
	return "division"
}
