package autodiff

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/tensorjo/internal/autodiff/ops"
	"github.com/born-ml/tensorjo/internal/naming"
	"github.com/born-ml/tensorjo/internal/tensor"
)

// NodeID indexes a node in its graph's arena.
type NodeID int

// Kind distinguishes leaves from binary and unary computation nodes.
type Kind int

// Node kinds.
const (
	Primitive Kind = iota
	Monoid
	Functor
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Monoid:
		return "monoid"
	case Functor:
		return "functor"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Connection is a reverse edge: the node holding it feeds the Slot input of
// the Target node.
type Connection struct {
	Target NodeID
	Slot   ops.Slot
}

// Node is a vertex of a Graph.
type Node struct {
	g       *Graph
	id      NodeID
	kind    Kind
	name    string
	removed bool

	c []Connection

	// Gradient memo, valid for one (sweep, target) pair.
	gradient       *tensor.Tensor
	gradientCached bool
	gradientSweep  uint64
	gradientTarget NodeID
	reachesTarget  bool

	// Output memo, used in cache mode by non-primitive nodes.
	outputCache  *tensor.Tensor
	outputCached bool

	// Primitive state.
	v    *tensor.Tensor
	deps []NodeID // nodes whose output depends on this primitive, in cache mode

	// Monoid and functor state. A functor only uses m1.
	m1, m2     NodeID
	binary     ops.BinaryOp
	unary      ops.UnaryOp
	binaryCtor ops.BinaryConstructor
	unaryCtor  ops.UnaryConstructor
}

// NewPrimitive creates a detached primitive node holding value. It must be
// added to a graph with Graph.Register before use. An empty name picks a
// random one.
func NewPrimitive(value any, name string) (*Node, error) {
	t, err := tensor.From(value)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = naming.TensorName()
	}
	return &Node{kind: Primitive, name: name, v: t}, nil
}

// ID returns the node's arena index.
func (n *Node) ID() NodeID {
	return n.id
}

// Name returns the node's registered name.
func (n *Node) Name() string {
	return n.name
}

// Kind returns the node kind.
func (n *Node) Kind() Kind {
	return n.kind
}

// Graph returns the owning graph, or nil for detached nodes.
func (n *Node) Graph() *Graph {
	if n.removed {
		return nil
	}
	return n.g
}

// Removed reports whether the node was removed from its graph.
func (n *Node) Removed() bool {
	return n.removed
}

// String returns the node name.
func (n *Node) String() string {
	return n.name
}

// Shape returns the shape of the node's output.
func (n *Node) Shape() tensor.Shape {
	if n.kind == Primitive {
		return n.v.Shape()
	}
	return n.op().Shape()
}

// Op returns the node's operation, or nil for primitives.
func (n *Node) Op() ops.Op {
	return n.op()
}

func (n *Node) op() ops.Op {
	switch n.kind {
	case Monoid:
		return n.binary
	case Functor:
		return n.unary
	}
	return nil
}

// Value returns the tensor held by a primitive, or nil for other kinds.
func (n *Node) Value() *tensor.Tensor {
	if n.kind != Primitive {
		return nil
	}
	return n.v
}

// Connections returns a copy of the node's reverse edges.
func (n *Node) Connections() []Connection {
	out := make([]Connection, len(n.c))
	copy(out, n.c)
	return out
}

// Inputs returns the nodes feeding this node: two for monoids, one for
// functors, none for primitives.
func (n *Node) Inputs() ([]*Node, error) {
	if err := n.live(); err != nil {
		return nil, err
	}
	return n.inputs()
}

func (n *Node) inputs() ([]*Node, error) {
	var ids []NodeID
	switch n.kind {
	case Primitive:
		return nil, nil
	case Monoid:
		ids = []NodeID{n.m1, n.m2}
	case Functor:
		ids = []NodeID{n.m1}
	default:
		return nil, n.g.invariant(n, "unknown node kind %s", n.kind)
	}

	out := make([]*Node, len(ids))
	for i, id := range ids {
		in := n.g.node(id)
		if in == nil {
			return nil, n.g.invariant(n, "input %d (id %d) is not a live node", i, id)
		}
		out[i] = in
	}
	return out, nil
}

// Update replaces the value of a primitive. The new value must have the
// primitive's shape. In cache mode every memoized output depending on this
// primitive is invalidated.
func (n *Node) Update(value any) error {
	if err := n.live(); err != nil {
		return err
	}
	if n.kind != Primitive {
		return errors.Wrapf(tensor.ErrValidation, "cannot update %s node %q", n.kind, n.name)
	}
	t, err := tensor.From(value)
	if err != nil {
		return errors.WithMessagef(err, "updating %q", n.name)
	}
	if !t.Shape().Equal(n.v.Shape()) {
		return errors.Wrapf(tensor.ErrValidation, "updating %q: shape %s does not match %s",
			n.name, t.Shape(), n.v.Shape())
	}
	n.v = t
	if n.g.caching {
		n.g.invalidate(n)
	}
	return nil
}

// Output evaluates the node.
func (n *Node) Output() (*tensor.Tensor, error) {
	if err := n.live(); err != nil {
		return nil, err
	}
	return n.g.evaluate(n)
}

// GradientWRT returns d(target)/d(n), shaped like n.
//
// Results are memoized for the current gradient sweep, so target must have
// been evaluated since the last change to the graph. Graph.Gradients starts a
// fresh sweep and evaluates the target first.
func (n *Node) GradientWRT(target *Node) (*tensor.Tensor, error) {
	if err := n.live(); err != nil {
		return nil, err
	}
	if err := n.g.owns(target); err != nil {
		return nil, err
	}
	return n.g.gradient(n, target)
}

func (n *Node) live() error {
	if n == nil {
		return errors.Wrap(ErrNotFound, "nil node")
	}
	if n.removed || n.g == nil {
		return errors.Wrapf(ErrNotFound, "node %q is not attached to a graph", n.name)
	}
	return nil
}

func (n *Node) detached() {
	n.removed = true
	n.c = nil
	n.deps = nil
	n.gradient, n.gradientCached = nil, false
	n.outputCache, n.outputCached = nil, false
}

// describe renders the node and its connections for diagnostics.
func (n *Node) describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%q (%s, id %d) connections=[", n.name, n.kind, n.id)
	for i, c := range n.c {
		if i > 0 {
			sb.WriteString(", ")
		}
		target := "<removed>"
		if n.g != nil {
			if t := n.g.node(c.Target); t != nil {
				target = fmt.Sprintf("%q (%s)", t.name, t.kind)
			}
		}
		fmt.Fprintf(&sb, "%d:%s->%s", c.Target, c.Slot, target)
	}
	sb.WriteString("]")
	return sb.String()
}

func (g *Graph) invariant(n *Node, format string, args ...any) error {
	return errors.Wrapf(ErrInvariantViolation, "graph %s: %s; node %s",
		g.config.Name, fmt.Sprintf(format, args...), n.describe())
}
