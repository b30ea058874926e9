package autodiff

import "k8s.io/klog/v2"

// Cache switches the graph to cache mode. Non-primitive nodes memoize their
// output until a primitive they depend on is updated. Any memo left from an
// earlier cache session is discarded.
func (g *Graph) Cache() {
	g.caching = true
	g.reindex()
	klog.V(1).Infof("graph %q: cache mode on", g.config.Name)
}

// NoCache switches the graph back to recomputing every output.
func (g *Graph) NoCache() {
	g.caching = false
	for _, n := range g.arena {
		if n == nil {
			continue
		}
		n.deps = nil
		n.outputCache, n.outputCached = nil, false
	}
	klog.V(1).Infof("graph %q: cache mode off", g.config.Name)
}

// Caching reports whether the graph is in cache mode.
func (g *Graph) Caching() bool {
	return g.caching
}

// reindex drops every output memo and recomputes every primitive's
// dependency set.
func (g *Graph) reindex() {
	primitives := 0
	for _, n := range g.arena {
		if n == nil {
			continue
		}
		if n.kind == Primitive {
			n.deps = g.dependencies(n)
			primitives++
			continue
		}
		n.outputCache, n.outputCached = nil, false
	}
	klog.V(2).Infof("graph %q: indexed dependencies of %d primitives", g.config.Name, primitives)
}

// dependencies returns every node reachable from p through connections,
// excluding p itself.
func (g *Graph) dependencies(p *Node) []NodeID {
	visited := map[NodeID]bool{p.id: true}
	var deps []NodeID
	stack := []NodeID{p.id}
	for len(stack) > 0 {
		n := g.node(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		for _, c := range n.c {
			if visited[c.Target] {
				continue
			}
			visited[c.Target] = true
			deps = append(deps, c.Target)
			stack = append(stack, c.Target)
		}
	}
	return deps
}

// invalidate drops the output memo of every node depending on p.
func (g *Graph) invalidate(p *Node) {
	for _, id := range p.deps {
		if n := g.node(id); n != nil {
			n.outputCache, n.outputCached = nil, false
		}
	}
}
