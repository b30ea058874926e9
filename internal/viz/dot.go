package viz

import (
	"fmt"

	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/born-ml/tensorjo/internal/autodiff"
)

// dotNode adapts a traced node to gonum's graph and DOT interfaces.
type dotNode struct {
	entry
	color string
}

func (n dotNode) ID() int64     { return int64(n.node.ID()) }
func (n dotNode) DOTID() string { return n.node.Name() }

func (n dotNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "color", Value: n.color},
		{Key: "label", Value: fmt.Sprintf("%s\n%s\n%s", n.node.Name(), n.node.Kind(), n.value)},
	}
}

// DOT returns the Graphviz encoding of master and everything it depends on.
// Edges point from inputs to the nodes consuming them.
func DOT(master *autodiff.Node) ([]byte, error) {
	entries, err := trace(master)
	if err != nil {
		return nil, err
	}

	dag := simple.NewDirectedGraph()
	nodes := make(map[autodiff.NodeID]dotNode, len(entries))
	for _, e := range entries {
		n := dotNode{entry: e, color: Color(e.node, master)}
		nodes[e.node.ID()] = n
		dag.AddNode(n)
	}
	for _, e := range entries {
		ins, err := e.node.Inputs()
		if err != nil {
			return nil, err
		}
		for _, in := range ins {
			dag.SetEdge(dag.NewEdge(nodes[in.ID()], nodes[e.node.ID()]))
		}
	}

	name := "tensorjo"
	if g := master.Graph(); g != nil {
		name = g.Name()
	}
	return dot.Marshal(dag, name, "", "\t")
}
