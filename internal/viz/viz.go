// Package viz renders the part of a graph a node depends on, either as
// Graphviz DOT or as a styled terminal table.
//
// Nodes are colored by kind: primitives black, functors purple, monoids red
// and the node being traced green.
package viz

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/tensorjo/internal/autodiff"
)

// Colors by node kind, and for the traced node.
const (
	PrimitiveColor = "black"
	FunctorColor   = "purple"
	MonoidColor    = "red"
	MasterColor    = "green"
)

// maxValueWidth bounds how much of a node's output is printed.
const maxValueWidth = 48

// Color returns the display color of n when master is being traced.
func Color(n, master *autodiff.Node) string {
	if n == master {
		return MasterColor
	}
	switch n.Kind() {
	case autodiff.Functor:
		return FunctorColor
	case autodiff.Monoid:
		return MonoidColor
	default:
		return PrimitiveColor
	}
}

// entry is one traced node with its evaluated output.
type entry struct {
	node  *autodiff.Node
	value string
}

// trace evaluates master and every node it depends on, inputs first.
func trace(master *autodiff.Node) ([]entry, error) {
	g := master.Graph()
	if g == nil {
		return nil, errors.Wrapf(autodiff.ErrNotFound, "node %q is not attached to a graph", master.Name())
	}
	nodes, err := g.Ancestors(master)
	if err != nil {
		return nil, err
	}
	entries := make([]entry, len(nodes))
	for i, n := range nodes {
		out, err := n.Output()
		if err != nil {
			return nil, errors.WithMessagef(err, "tracing %q", master.Name())
		}
		entries[i] = entry{node: n, value: truncate(fmt.Sprint(out), maxValueWidth)}
	}
	return entries, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
