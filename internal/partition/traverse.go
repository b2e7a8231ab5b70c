package partition

// Traverse returns every node, root first, in the order of Walk. The
// sequence is reproducible for a fixed input.
func (t *Tree) Traverse() []*Node {
	out := make([]*Node, 0, t.nodes)
	t.root.Walk(func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Walk visits every node in traversal order until fn returns false.
func (t *Tree) Walk(fn func(*Node) bool) {
	t.root.Walk(fn)
}

// Leaves returns the terminal nodes in traversal order.
func (t *Tree) Leaves() []*Node {
	var out []*Node
	t.root.Walk(func(n *Node) bool {
		if n.IsLeaf() {
			out = append(out, n)
		}
		return true
	})
	return out
}
