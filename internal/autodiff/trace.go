package autodiff

// Ancestors returns n and every node its output depends on, with each node
// listed after all of its inputs.
func (g *Graph) Ancestors(n *Node) ([]*Node, error) {
	if err := g.owns(n); err != nil {
		return nil, err
	}

	var order []*Node
	seen := make(map[NodeID]bool)
	stack := []frame{{n: n}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		x := top.n
		if seen[x.id] {
			stack = stack[:len(stack)-1]
			continue
		}
		ins, err := x.inputs()
		if err != nil {
			return nil, err
		}
		if !top.expanded {
			top.expanded = true
			for _, in := range ins {
				if !seen[in.id] {
					stack = append(stack, frame{n: in})
				}
			}
			continue
		}
		seen[x.id] = true
		order = append(order, x)
		stack = stack[:len(stack)-1]
	}
	return order, nil
}
