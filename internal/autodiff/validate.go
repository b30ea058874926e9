package autodiff

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/born-ml/tensorjo/internal/autodiff/ops"
)

// Validate checks the graph's structural invariants: every registered name
// resolves to a live node, connections and inputs mirror each other, and the
// computation is acyclic. Violations wrap ErrInvariantViolation.
func (g *Graph) Validate() error {
	for name, id := range g.nodes {
		n := g.node(id)
		if n == nil || n.name != name {
			return errors.Wrapf(ErrInvariantViolation, "graph %s: name %q maps to stale id %d", g.config.Name, name, id)
		}
	}
	for name, id := range g.variables {
		if nid, ok := g.nodes[name]; !ok || nid != id {
			return errors.Wrapf(ErrInvariantViolation, "graph %s: variable %q is not a registered node", g.config.Name, name)
		}
	}

	dag := simple.NewDirectedGraph()
	for _, n := range g.arena {
		if n == nil {
			continue
		}
		if _, ok := g.nodes[n.name]; !ok {
			return g.invariant(n, "live node is not registered")
		}
		if dag.Node(int64(n.id)) == nil {
			dag.AddNode(simple.Node(n.id))
		}

		for _, c := range n.c {
			dep := g.node(c.Target)
			if dep == nil {
				return g.invariant(n, "connection to missing node %d", c.Target)
			}
			if dep == n {
				return g.invariant(n, "connection to itself")
			}
			if !dep.reads(n.id, c.Slot) {
				return g.invariant(n, "%q does not read this node through slot %s", dep.name, c.Slot)
			}
			dag.SetEdge(dag.NewEdge(simple.Node(n.id), simple.Node(dep.id)))
		}

		if err := g.validateInputs(n); err != nil {
			return err
		}
	}

	if _, err := topo.Sort(dag); err != nil {
		return errors.Wrapf(ErrInvariantViolation, "graph %s: %v", g.config.Name, err)
	}
	return nil
}

func (g *Graph) validateInputs(n *Node) error {
	var slots []ops.Slot
	switch n.kind {
	case Primitive:
		if n.v == nil {
			return g.invariant(n, "primitive without value")
		}
		return nil
	case Monoid:
		if n.binary == nil {
			return g.invariant(n, "monoid without op")
		}
		slots = []ops.Slot{ops.First, ops.Second}
	case Functor:
		if n.unary == nil {
			return g.invariant(n, "functor without op")
		}
		slots = []ops.Slot{ops.Only}
	default:
		return g.invariant(n, "unknown node kind %s", n.kind)
	}

	ins, err := n.inputs()
	if err != nil {
		return err
	}
	for i, in := range ins {
		want := Connection{Target: n.id, Slot: slots[i]}
		count := 0
		for _, c := range in.c {
			if c == want {
				count++
			}
		}
		if count != 1 {
			return g.invariant(n, "input %q holds %d connections for slot %s, want 1", in.name, count, slots[i])
		}
	}
	return nil
}

// reads reports whether n consumes id through slot.
func (n *Node) reads(id NodeID, slot ops.Slot) bool {
	switch {
	case n.kind == Monoid && slot == ops.First:
		return n.m1 == id
	case n.kind == Monoid && slot == ops.Second:
		return n.m2 == id
	case n.kind == Functor && slot == ops.Only:
		return n.m1 == id
	}
	return false
}
