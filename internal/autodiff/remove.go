package autodiff

import (
	"slices"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/tensorjo/internal/autodiff/ops"
	"github.com/born-ml/tensorjo/internal/tensor"
)

// Remove deletes n and every node that depends solely on it.
//
// Functors consuming a removed node are removed with it. A monoid consuming
// a removed node through one input is spliced out: its consumers are rewired
// to read from the monoid's other input instead. A monoid fed by the removed
// node through both inputs is removed.
//
// Rewired consumers rebuild their op for the new input shapes. If a rebuild
// fails the error wraps tensor.ErrValidation and the graph is left with the
// rewiring already applied; Validate still holds but later evaluation of the
// affected nodes fails.
func (g *Graph) Remove(n *Node) error {
	if err := g.owns(n); err != nil {
		return err
	}

	queue := []*Node{n}
	var rewired []*Node
	for len(queue) > 0 {
		x := queue[0]
		queue = queue[1:]
		if x.removed {
			continue
		}

		for _, c := range slices.Clone(x.c) {
			dep := g.node(c.Target)
			if dep == nil {
				continue
			}
			switch dep.kind {
			case Functor:
				queue = append(queue, dep)
			case Monoid:
				var otherID NodeID
				switch c.Slot {
				case ops.First:
					otherID = dep.m2
				case ops.Second:
					otherID = dep.m1
				default:
					return g.invariant(x, "monoid %q is fed through slot %s", dep.name, c.Slot)
				}
				other := g.node(otherID)
				if other == nil || other == x {
					queue = append(queue, dep)
					continue
				}
				consumers, err := g.splice(dep, other)
				if err != nil {
					return err
				}
				rewired = append(rewired, consumers...)
			case Primitive:
				return g.invariant(x, "connection points at primitive %q", dep.name)
			default:
				return g.invariant(x, "connection points at %q of unknown kind %s", dep.name, dep.kind)
			}
		}
		g.drop(x)
	}

	if g.caching {
		g.reindex()
	}
	return g.reshape(rewired)
}

// splice removes monoid m, connecting each of its consumers to other, the
// input of m that survives. It returns the rewired consumers.
func (g *Graph) splice(m, other *Node) ([]*Node, error) {
	other.c = slices.DeleteFunc(other.c, func(c Connection) bool { return c.Target == m.id })

	var consumers []*Node
	for _, cc := range m.c {
		consumer := g.node(cc.Target)
		if consumer == nil {
			return nil, g.invariant(m, "connection to missing node %d", cc.Target)
		}
		switch consumer.kind {
		case Functor:
			if cc.Slot != ops.Only {
				return nil, g.invariant(m, "functor %q is fed through slot %s", consumer.name, cc.Slot)
			}
			consumer.m1 = other.id
		case Monoid:
			switch cc.Slot {
			case ops.First:
				consumer.m1 = other.id
			case ops.Second:
				consumer.m2 = other.id
			default:
				return nil, g.invariant(m, "monoid %q is fed through slot %s", consumer.name, cc.Slot)
			}
		case Primitive:
			return nil, g.invariant(m, "connection points at primitive %q", consumer.name)
		default:
			return nil, g.invariant(m, "connection points at %q of unknown kind %s", consumer.name, consumer.kind)
		}
		other.c = append(other.c, Connection{Target: consumer.id, Slot: cc.Slot})
		consumers = append(consumers, consumer)
	}

	klog.V(2).Infof("graph %q: spliced %q, %d consumers now read %q", g.config.Name, m.name, len(consumers), other.name)
	m.c = nil
	g.drop(m)
	return consumers, nil
}

// drop detaches n from its inputs and the registry.
func (g *Graph) drop(n *Node) {
	if n.kind != Primitive {
		for _, id := range []NodeID{n.m1, n.m2} {
			if in := g.node(id); in != nil {
				in.c = slices.DeleteFunc(in.c, func(c Connection) bool { return c.Target == n.id })
			}
			if n.kind == Functor {
				break
			}
		}
	}
	delete(g.nodes, n.name)
	delete(g.variables, n.name)
	g.arena[n.id] = nil
	n.detached()
	klog.V(2).Infof("graph %q: removed %s node %q", g.config.Name, n.kind, n.name)
}

// reshape rebuilds the op of every rewired node whose input shapes changed,
// following shape changes downstream.
func (g *Graph) reshape(queue []*Node) error {
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.removed {
			continue
		}

		before := n.Shape()
		if err := g.rebuild(n); err != nil {
			return err
		}
		if n.Shape().Equal(before) {
			continue
		}
		for _, c := range n.c {
			if dep := g.node(c.Target); dep != nil {
				queue = append(queue, dep)
			}
		}
	}
	return nil
}

func (g *Graph) rebuild(n *Node) error {
	ins, err := n.inputs()
	if err != nil {
		return err
	}
	switch n.kind {
	case Monoid:
		op, err := n.binaryCtor(tensor.Ones(ins[0].Shape()), tensor.Ones(ins[1].Shape()))
		if err != nil {
			return errors.Wrapf(tensor.ErrValidation, "rewiring %q onto %q and %q: %v", n.name, ins[0].name, ins[1].name, err)
		}
		n.binary = op
	case Functor:
		op, err := n.unaryCtor(tensor.Ones(ins[0].Shape()))
		if err != nil {
			return errors.Wrapf(tensor.ErrValidation, "rewiring %q onto %q: %v", n.name, ins[0].name, err)
		}
		n.unary = op
	}
	n.outputCache, n.outputCached = nil, false
	return nil
}
