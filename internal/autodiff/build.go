package autodiff

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/born-ml/tensorjo/internal/autodiff/ops"
	"github.com/born-ml/tensorjo/internal/naming"
	"github.com/born-ml/tensorjo/internal/tensor"
)

// Option customizes a node being built.
type Option func(*options)

type options struct {
	name string
}

// Named sets the name of the node being built. Without it a random name
// derived from the op name is used.
func Named(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Var adds a trainable primitive holding value.
func (g *Graph) Var(value any, opts ...Option) (*Node, error) {
	return g.primitive(value, true, opts)
}

// Constant adds a non-trainable primitive holding value.
func (g *Graph) Constant(value any, opts ...Option) (*Node, error) {
	return g.primitive(value, false, opts)
}

func (g *Graph) primitive(value any, variable bool, opts []Option) (*Node, error) {
	o := buildOptions(opts)
	n, err := NewPrimitive(value, o.name)
	if err != nil {
		return nil, err
	}
	g.register(n, variable)
	g.attach(n)
	return n, nil
}

// wrap returns v as a node of g. Raw values become constant primitives.
func (g *Graph) wrap(v any) (*Node, error) {
	if n, ok := v.(*Node); ok {
		if err := g.owns(n); err != nil {
			return nil, err
		}
		return n, nil
	}
	return g.primitive(v, false, nil)
}

// ApplyBinary builds a monoid node computing ctor's op over a and b. Either
// input may be a *Node of this graph or any value tensor.From accepts.
func (g *Graph) ApplyBinary(ctor ops.BinaryConstructor, a, b any, opts ...Option) (*Node, error) {
	m1, err := g.wrap(a)
	if err != nil {
		return nil, err
	}
	m2, err := g.wrap(b)
	if err != nil {
		return nil, err
	}

	op, err := ctor(tensor.Ones(m1.Shape()), tensor.Ones(m2.Shape()))
	if err != nil {
		return nil, errors.WithMessagef(err, "combining %q and %q", m1.name, m2.name)
	}

	o := buildOptions(opts)
	if o.name == "" {
		o.name = naming.NodeName(op.Name())
	}
	n := &Node{
		kind:       Monoid,
		name:       o.name,
		m1:         m1.id,
		m2:         m2.id,
		binary:     op,
		binaryCtor: ctor,
	}
	g.register(n, false)
	m1.c = append(m1.c, Connection{Target: n.id, Slot: ops.First})
	m2.c = append(m2.c, Connection{Target: n.id, Slot: ops.Second})
	g.attach(n)
	return n, nil
}

// ApplyUnary builds a functor node computing ctor's op over x.
func (g *Graph) ApplyUnary(ctor ops.UnaryConstructor, x any, opts ...Option) (*Node, error) {
	m1, err := g.wrap(x)
	if err != nil {
		return nil, err
	}

	op, err := ctor(tensor.Ones(m1.Shape()))
	if err != nil {
		return nil, errors.WithMessagef(err, "applying to %q", m1.name)
	}

	o := buildOptions(opts)
	if o.name == "" {
		o.name = naming.NodeName(op.Name())
	}
	n := &Node{
		kind:      Functor,
		name:      o.name,
		m1:        m1.id,
		unary:     op,
		unaryCtor: ctor,
	}
	g.register(n, false)
	m1.c = append(m1.c, Connection{Target: n.id, Slot: ops.Only})
	g.attach(n)
	return n, nil
}

// attach keeps the dependency sets current when a node is added in cache mode.
func (g *Graph) attach(n *Node) {
	if !g.caching {
		return
	}
	if n.kind == Primitive {
		n.deps = nil
		return
	}

	ins := []NodeID{n.m1}
	if n.kind == Monoid {
		ins = append(ins, n.m2)
	}
	for _, p := range g.arena {
		if p == nil || p.kind != Primitive {
			continue
		}
		for _, in := range ins {
			if in == p.id || slices.Contains(p.deps, in) {
				p.deps = append(p.deps, n.id)
				break
			}
		}
	}
}

// Add builds a + b.
func (g *Graph) Add(a, b any, opts ...Option) (*Node, error) {
	return g.ApplyBinary(ops.Addition, a, b, opts...)
}

// Sub builds a - b.
func (g *Graph) Sub(a, b any, opts ...Option) (*Node, error) {
	return g.ApplyBinary(ops.Subtraction, a, b, opts...)
}

// Mul builds the elementwise product a * b.
func (g *Graph) Mul(a, b any, opts ...Option) (*Node, error) {
	return g.ApplyBinary(ops.Multiplication, a, b, opts...)
}

// Div builds the elementwise quotient a / b.
func (g *Graph) Div(a, b any, opts ...Option) (*Node, error) {
	return g.ApplyBinary(ops.Division, a, b, opts...)
}

// MSE builds the mean squared error of a and b along axis 1.
func (g *Graph) MSE(a, b any, opts ...Option) (*Node, error) {
	return g.ApplyBinary(ops.MSE, a, b, opts...)
}

// Dot builds the matrix product of two rank-2 inputs.
func (g *Graph) Dot(a, b any, opts ...Option) (*Node, error) {
	return g.ApplyBinary(ops.Dot, a, b, opts...)
}

// MatMul builds the batched matrix product of a and b. It has no gradient.
func (g *Graph) MatMul(a, b any, opts ...Option) (*Node, error) {
	return g.ApplyBinary(ops.MatMul, a, b, opts...)
}

// Sigmoid builds 1/(1+exp(-x)).
func (g *Graph) Sigmoid(x any, opts ...Option) (*Node, error) {
	return g.ApplyUnary(ops.Sigmoid, x, opts...)
}

// Sin builds sin(x).
func (g *Graph) Sin(x any, opts ...Option) (*Node, error) {
	return g.ApplyUnary(ops.Sin, x, opts...)
}

// Cos builds cos(x).
func (g *Graph) Cos(x any, opts ...Option) (*Node, error) {
	return g.ApplyUnary(ops.Cos, x, opts...)
}

// Mean builds the mean of x along axis.
func (g *Graph) Mean(x any, axis int, opts ...Option) (*Node, error) {
	return g.ApplyUnary(ops.Mean(axis), x, opts...)
}
