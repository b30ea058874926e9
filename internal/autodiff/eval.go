package autodiff

import (
	"github.com/pkg/errors"

	"github.com/born-ml/tensorjo/internal/tensor"
)

// frame is a DFS stack entry shared by the graph traversals.
type frame struct {
	n        *Node
	expanded bool
}

// evaluate computes root's output in post-order without recursion, so
// arbitrarily deep chains are safe. Every evaluated node's gradient memo is
// reset, and in cache mode non-primitive outputs are memoized.
func (g *Graph) evaluate(root *Node) (*tensor.Tensor, error) {
	values := make(map[NodeID]*tensor.Tensor)
	onStack := make(map[NodeID]bool)
	stack := []frame{{n: root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		n := top.n

		if _, done := values[n.id]; done {
			stack = stack[:len(stack)-1]
			continue
		}
		if n.kind == Primitive {
			n.gradientCached = false
			values[n.id] = n.v
			stack = stack[:len(stack)-1]
			continue
		}
		if g.caching && n.outputCached {
			n.gradientCached = false
			values[n.id] = n.outputCache
			stack = stack[:len(stack)-1]
			continue
		}

		ins, err := n.inputs()
		if err != nil {
			return nil, err
		}

		if !top.expanded {
			top.expanded = true
			onStack[n.id] = true
			for _, in := range ins {
				if _, done := values[in.id]; done {
					continue
				}
				if onStack[in.id] {
					return nil, g.invariant(n, "cycle through input %q", in.name)
				}
				stack = append(stack, frame{n: in})
			}
			continue
		}

		out, err := g.forward(n, ins, values)
		if err != nil {
			return nil, errors.WithMessagef(err, "evaluating %q", n.name)
		}
		n.gradientCached = false
		if g.caching {
			n.outputCache, n.outputCached = out, true
		}
		values[n.id] = out
		delete(onStack, n.id)
		stack = stack[:len(stack)-1]
	}
	return values[root.id], nil
}

func (g *Graph) forward(n *Node, ins []*Node, values map[NodeID]*tensor.Tensor) (*tensor.Tensor, error) {
	switch n.kind {
	case Monoid:
		return n.binary.Forward(values[ins[0].id], values[ins[1].id])
	case Functor:
		return n.unary.Forward(values[ins[0].id])
	}
	return nil, g.invariant(n, "cannot run forward on a %s node", n.kind)
}
