package autodiff

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/tensorjo/internal/autodiff/ops"
	"github.com/born-ml/tensorjo/internal/tensor"
)

// Gradients evaluates output and returns d(output)/d(t) for each target, in
// order. Each gradient has its target's shape.
//
// All targets share one gradient sweep: partial results computed for one
// target are reused by the next.
func (g *Graph) Gradients(output *Node, targets ...*Node) ([]*tensor.Tensor, error) {
	if err := g.owns(output); err != nil {
		return nil, err
	}
	if _, err := output.Output(); err != nil {
		return nil, err
	}
	g.sweep++

	grads := make([]*tensor.Tensor, len(targets))
	for i, t := range targets {
		if err := g.owns(t); err != nil {
			return nil, err
		}
		grad, err := g.gradient(t, output)
		if err != nil {
			return nil, err
		}
		grads[i] = grad
	}
	return grads, nil
}

// gradient returns d(target)/d(start).
//
// It walks the connections from start toward target in post-order,
// memoizing each visited node's partial gradient for the current sweep. A
// node whose connections never reach target is marked as such and
// contributes nothing to its inputs; its op's backward is never called.
func (g *Graph) gradient(start, target *Node) (*tensor.Tensor, error) {
	if start == target {
		return tensor.Ones(target.Shape()), nil
	}

	onStack := make(map[NodeID]bool)
	stack := []frame{{n: start}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		n := top.n

		if g.memoized(n, target) {
			stack = stack[:len(stack)-1]
			continue
		}

		if !top.expanded {
			top.expanded = true
			onStack[n.id] = true
			for _, c := range n.c {
				dep := g.node(c.Target)
				if dep == nil {
					return nil, g.invariant(n, "connection to missing node %d", c.Target)
				}
				if dep == target || g.memoized(dep, target) {
					continue
				}
				if onStack[dep.id] {
					return nil, g.invariant(n, "cycle through consumer %q", dep.name)
				}
				stack = append(stack, frame{n: dep})
			}
			continue
		}

		if err := g.accumulate(n, target); err != nil {
			return nil, err
		}
		delete(onStack, n.id)
		stack = stack[:len(stack)-1]
	}

	if start.reachesTarget {
		return start.gradient, nil
	}
	if g.config.StrictGradients {
		return nil, errors.Wrapf(ErrDisconnected, "%q does not depend on %q", target.name, start.name)
	}
	klog.V(2).Infof("graph %q: %q does not depend on %q, gradient is zero", g.config.Name, target.name, start.name)
	return tensor.Zeros(start.Shape()), nil
}

func (g *Graph) memoized(n, target *Node) bool {
	return n.gradientCached && n.gradientSweep == g.sweep && n.gradientTarget == target.id
}

// accumulate sums the chain-rule terms of every connection of n whose
// consumer reaches target, then memoizes the sum.
func (g *Graph) accumulate(n, target *Node) error {
	var sum *tensor.Tensor
	reaches := false
	for _, c := range n.c {
		dep := g.node(c.Target)
		if dep == nil {
			return g.invariant(n, "connection to missing node %d", c.Target)
		}

		var upstream *tensor.Tensor
		switch {
		case dep == target:
			upstream = tensor.Ones(target.Shape())
		case dep.reachesTarget:
			upstream = dep.gradient
		default:
			continue
		}

		term, err := ops.Chain(dep.op(), c.Slot, upstream, n.Shape())
		if err != nil {
			return errors.WithMessagef(err, "gradient of %q through %q", n.name, dep.name)
		}
		if sum == nil {
			sum = term
		} else if sum, err = tensor.Add(sum, term); err != nil {
			return errors.WithMessagef(err, "gradient of %q through %q", n.name, dep.name)
		}
		reaches = true
	}

	n.gradient = sum
	n.reachesTarget = reaches
	n.gradientCached = true
	n.gradientSweep = g.sweep
	n.gradientTarget = target.id
	return nil
}
