// Package ops defines the stateful operations attached to tensorjo graph nodes.
//
// An op is built once from example inputs to validate shapes, then its
// Forward method is called on every evaluation of the owning node. Forward is
// the only method that refreshes the op's remembered inputs. The backward
// methods take no arguments: they return the partial derivative of the last
// forward output with respect to one input, computed from the closed-form
// derivative rather than by differentiating the forward code.
//
// Supported operations:
//   - AddOp: d(a+b)/da = 1, d(a+b)/db = 1
//   - SubOp: d(a-b)/da = 1, d(a-b)/db = -1
//   - MulOp: d(a*b)/da = b, d(a*b)/db = a
//   - DivOp: d(a/b)/da = 1/b, d(a/b)/db = -a/b² (with an epsilon against zero division)
//   - MSEOp: mean((a-b)², axis=1), d/da = 2(a-b)/n
//   - DotOp: rank-2 matrix product, row and column sum derivatives
//   - MatMulOp: batched matrix product, forward only
//   - SigmoidOp, SinOp, CosOp, MeanOp: unary functions
package ops

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/tensorjo/internal/tensor"
)

// ErrNotImplemented is returned by backward passes that are not provided.
var ErrNotImplemented = errors.New("not implemented")

// Op is the part of the contract shared by binary and unary operations.
type Op interface {
	// Name of the operation, also used as the prefix of default node names.
	Name() string

	// Shape of the forward output.
	Shape() tensor.Shape

	// Cache returns the output of the most recent forward pass.
	Cache() *tensor.Tensor
}

// BinaryOp is an operation of two inputs, the op of a monoid node.
type BinaryOp interface {
	Op

	// Forward computes the output and remembers the inputs for the backward pass.
	Forward(a, b *tensor.Tensor) (*tensor.Tensor, error)

	// BackwardFirst returns d(output)/d(a) for the last forward call.
	BackwardFirst() (*tensor.Tensor, error)

	// BackwardSecond returns d(output)/d(b) for the last forward call.
	BackwardSecond() (*tensor.Tensor, error)
}

// UnaryOp is an operation of one input, the op of a functor node.
type UnaryOp interface {
	Op

	// Forward computes the output and remembers the input for the backward pass.
	Forward(x *tensor.Tensor) (*tensor.Tensor, error)

	// BackwardFunctor returns d(output)/d(x) for the last forward call.
	BackwardFunctor() (*tensor.Tensor, error)
}

// UpstreamBinary is implemented by binary ops whose Jacobian is not
// elementwise. The upstream gradient has the op's output shape; the result has
// the (broadcast) input shape. With an upstream of ones the result equals the
// zero-argument backward.
type UpstreamBinary interface {
	BinaryOp
	BackwardFirstFrom(upstream *tensor.Tensor) (*tensor.Tensor, error)
	BackwardSecondFrom(upstream *tensor.Tensor) (*tensor.Tensor, error)
}

// UpstreamUnary is the unary counterpart of UpstreamBinary.
type UpstreamUnary interface {
	UnaryOp
	BackwardFunctorFrom(upstream *tensor.Tensor) (*tensor.Tensor, error)
}

// BinaryConstructor builds a binary op from example inputs.
type BinaryConstructor func(a, b *tensor.Tensor) (BinaryOp, error)

// UnaryConstructor builds a unary op from an example input.
type UnaryConstructor func(x *tensor.Tensor) (UnaryOp, error)

// Binary adapts a concrete constructor to a BinaryConstructor.
func Binary[T BinaryOp](ctor func(a, b *tensor.Tensor) (T, error)) BinaryConstructor {
	return func(a, b *tensor.Tensor) (BinaryOp, error) {
		op, err := ctor(a, b)
		if err != nil {
			return nil, err
		}
		return op, nil
	}
}

// Unary adapts a concrete constructor to a UnaryConstructor.
func Unary[T UnaryOp](ctor func(x *tensor.Tensor) (T, error)) UnaryConstructor {
	return func(x *tensor.Tensor) (UnaryOp, error) {
		op, err := ctor(x)
		if err != nil {
			return nil, err
		}
		return op, nil
	}
}

// Slot identifies which input of an op an edge feeds.
type Slot int

// Input slots.
const (
	First  Slot = iota // first argument of a binary op
	Second             // second argument of a binary op
	Only               // sole argument of a unary op
)

// String returns the slot name.
func (s Slot) String() string {
	switch s {
	case First:
		return "first"
	case Second:
		return "second"
	case Only:
		return "only"
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// Backward returns the partial derivative of op's last output with respect
// to the input in slot.
func Backward(op Op, slot Slot) (*tensor.Tensor, error) {
	switch o := op.(type) {
	case BinaryOp:
		switch slot {
		case First:
			return o.BackwardFirst()
		case Second:
			return o.BackwardSecond()
		}
	case UnaryOp:
		if slot == Only {
			return o.BackwardFunctor()
		}
	}
	return nil, errors.Errorf("op %s has no %s input slot", op.Name(), slot)
}

// Chain computes one term of the chain rule: the sensitivity carried by
// upstream (shaped like op's output) pulled back through the input in slot and
// reduced to inShape, the shape of the node feeding that slot.
func Chain(op Op, slot Slot, upstream *tensor.Tensor, inShape tensor.Shape) (*tensor.Tensor, error) {
	grad, err := pullback(op, slot, upstream)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s backward (%s input)", op.Name(), slot)
	}
	return tensor.ReduceTo(grad, inShape)
}

func pullback(op Op, slot Slot, upstream *tensor.Tensor) (*tensor.Tensor, error) {
	switch o := op.(type) {
	case UpstreamBinary:
		switch slot {
		case First:
			return o.BackwardFirstFrom(upstream)
		case Second:
			return o.BackwardSecondFrom(upstream)
		}
	case UpstreamUnary:
		if slot == Only {
			return o.BackwardFunctorFrom(upstream)
		}
	}

	local, err := Backward(op, slot)
	if err != nil {
		return nil, err
	}
	return tensor.Mul(upstream, local)
}
