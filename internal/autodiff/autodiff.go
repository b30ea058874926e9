// Package autodiff implements tensorjo's computation graph and reverse-mode
// automatic differentiation.
//
// A Graph owns every node built through it. Nodes come in three kinds:
//   - Primitive: a leaf holding a constant or trainable tensor
//   - Monoid: a node combining two inputs through an ops.BinaryOp
//   - Functor: a node transforming one input through an ops.UnaryOp
//
// Nodes live in an arena indexed by NodeID. Each node records its inputs by
// ID and the reverse edges (Connections) to the nodes that consume it, so
// gradients can be computed by walking from a target back toward the output.
//
// Usage:
//
//	g := autodiff.New(autodiff.Config{})
//	a, _ := g.Var(5.0, autodiff.Named("a"))
//	c, _ := g.Mul(a, a)
//	grads, _ := g.Gradients(c, a) // dc/da = 2a = 10
//
// Evaluation is lazy and recomputes from the leaves on every Output call
// unless the graph is put in cache mode, where non-primitive outputs are
// memoized and invalidated through per-primitive dependency sets.
//
// A Graph is not safe for concurrent use.
package autodiff

import (
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/tensorjo/internal/naming"
	"github.com/born-ml/tensorjo/internal/tensor"
)

var (
	// ErrNotFound is returned when a name or node is not registered in the graph.
	ErrNotFound = errors.New("not found")

	// ErrInvariantViolation is returned when the graph's internal structure is inconsistent.
	ErrInvariantViolation = errors.New("graph invariant violation")

	// ErrDisconnected is returned by gradient queries in strict mode when the
	// output does not depend on the queried node.
	ErrDisconnected = errors.New("output does not depend on node")
)

// DefaultName is the name of a graph created with an empty Config.Name.
const DefaultName = "default"

// Config configures a Graph.
type Config struct {
	// Name identifies the graph in logs and error messages. Default: "default".
	Name string

	// StrictGradients makes gradient queries fail with ErrDisconnected when
	// the output does not depend on the queried node. By default such
	// gradients are zero tensors shaped like the node.
	StrictGradients bool
}

// Graph is a registry of named nodes and the computation that connects them.
type Graph struct {
	config Config

	arena     []*Node           // indexed by NodeID, nil once removed
	nodes     map[string]NodeID // every registered node by name
	variables map[string]NodeID // the trainable subset of nodes

	caching bool
	sweep   uint64 // gradient sweep counter, bumped by Gradients
}

// New creates an empty graph.
func New(config Config) *Graph {
	if config.Name == "" {
		config.Name = DefaultName
	}
	return &Graph{
		config:    config,
		arena:     make([]*Node, 0, 64),
		nodes:     make(map[string]NodeID),
		variables: make(map[string]NodeID),
	}
}

// Name returns the graph name.
func (g *Graph) Name() string {
	return g.config.Name
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Register adds a detached primitive built by NewPrimitive to the graph,
// optionally as a variable.
//
// If the node's name is already taken the node is renamed with a fresh
// suffix and a warning is logged; the existing node keeps its name.
func (g *Graph) Register(n *Node, variable bool) error {
	if n == nil {
		return errors.Wrap(ErrNotFound, "cannot register a nil node")
	}
	if n.g != nil || n.removed {
		return errors.Wrapf(ErrInvariantViolation, "node %q already belongs to a graph", n.name)
	}
	if n.kind != Primitive || n.v == nil {
		return errors.Wrapf(tensor.ErrValidation, "cannot register %s node %q without a value, use NewPrimitive", n.kind, n.name)
	}
	g.register(n, variable)
	return nil
}

func (g *Graph) register(n *Node, variable bool) {
	if g.taken(n.name) {
		renamed := naming.NodeName(n.name)
		for g.taken(renamed) {
			renamed = naming.NodeName(n.name)
		}
		klog.Warningf("graph %q: node name %q already in use, renaming new node to %q", g.config.Name, n.name, renamed)
		n.name = renamed
	}

	n.g = g
	n.id = NodeID(len(g.arena))
	g.arena = append(g.arena, n)
	g.nodes[n.name] = n.id
	if variable {
		g.variables[n.name] = n.id
	}
	klog.V(3).Infof("graph %q: registered %s node %q (variable=%t)", g.config.Name, n.kind, n.name, variable)
}

func (g *Graph) taken(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Node returns the node registered under name.
func (g *Graph) Node(name string) (*Node, error) {
	id, ok := g.nodes[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s is not a node in the graph %s", name, g.config.Name)
	}
	return g.arena[id], nil
}

// Nodes returns the nodes registered under names, in the order given.
// With no names it returns every node in creation order.
func (g *Graph) Nodes(names ...string) ([]*Node, error) {
	if len(names) == 0 {
		return g.sorted(g.nodes), nil
	}
	return g.lookup(g.nodes, "node", names)
}

// Variables returns the variables registered under names, in the order given.
// With no names it returns every variable in creation order.
func (g *Graph) Variables(names ...string) ([]*Node, error) {
	if len(names) == 0 {
		return g.sorted(g.variables), nil
	}
	return g.lookup(g.variables, "variable", names)
}

func (g *Graph) lookup(registry map[string]NodeID, what string, names []string) ([]*Node, error) {
	out := make([]*Node, 0, len(names))
	for _, name := range names {
		id, ok := registry[name]
		if !ok {
			return nil, errors.Wrapf(ErrNotFound, "%s is not a %s in the graph %s", name, what, g.config.Name)
		}
		out = append(out, g.arena[id])
	}
	return out, nil
}

func (g *Graph) sorted(registry map[string]NodeID) []*Node {
	ids := make([]NodeID, 0, len(registry))
	for _, id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = g.arena[id]
	}
	return out
}

// ByID returns the live node with the given ID.
func (g *Graph) ByID(id NodeID) (*Node, bool) {
	n := g.node(id)
	return n, n != nil
}

func (g *Graph) node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.arena) {
		return nil
	}
	return g.arena[id]
}

// Clear empties the graph. Nodes created before Clear are detached and can
// no longer be evaluated.
func (g *Graph) Clear() {
	for _, n := range g.arena {
		if n != nil {
			n.detached()
		}
	}
	g.arena = g.arena[:0]
	g.nodes = make(map[string]NodeID)
	g.variables = make(map[string]NodeID)
	klog.V(1).Infof("graph %q: cleared", g.config.Name)
}

// owns reports an error unless n is a live node of g.
func (g *Graph) owns(n *Node) error {
	switch {
	case n == nil:
		return errors.Wrap(ErrNotFound, "nil node")
	case n.removed:
		return errors.Wrapf(ErrNotFound, "node %q was removed from the graph %s", n.name, g.config.Name)
	case n.g != g:
		return errors.Wrapf(ErrNotFound, "node %q does not belong to the graph %s", n.name, g.config.Name)
	}
	return nil
}
