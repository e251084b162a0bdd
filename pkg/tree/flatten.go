package tree

// Row is one on-screen line of a materialized tree.
type Row struct {
	Node     *Node
	Depth    int
	Expanded bool
	// Last[i] reports whether the ancestor at depth i+1 (and finally the node
	// itself) is the last of its siblings. Renderers use it to draw branches.
	Last []bool
}

// Expandable reports whether the row has children to reveal.
func (r Row) Expandable() bool {
	return r.Node.HasChildren()
}

// Flatten lists the visible occurrences of root in display order: the root,
// then the children of every visible expanded occurrence, depth first.
func Flatten(root *Node, expanded ExpansionSet) []Row {
	if root == nil {
		return nil
	}
	var rows []Row
	var walk func(n *Node, depth int, last []bool)
	walk = func(n *Node, depth int, last []bool) {
		open := expanded.Contains(n.Path)
		rows = append(rows, Row{Node: n, Depth: depth, Expanded: open, Last: last})
		if !open {
			return
		}
		for i, child := range n.Children {
			childLast := make([]bool, len(last)+1)
			copy(childLast, last)
			childLast[len(last)] = i == len(n.Children)-1
			walk(child, depth+1, childLast)
		}
	}
	walk(root, 0, nil)
	return rows
}
