package tree

import (
	"github.com/l3aro/flow-dep-graph/pkg/flow"
	"github.com/l3aro/flow-dep-graph/pkg/graph"
)

// Node is one occurrence of a module in the rendered tree.
type Node struct {
	Path       PathID         `json:"path"`
	ID         graph.ModuleID `json:"id"`
	Name       string         `json:"name"`
	Level      flow.Level     `json:"level"`
	CanUpgrade bool           `json:"canUpgrade"`
	// Children is nil when not computed. A computed occurrence without
	// dependencies has an empty, non-nil slice.
	Children []*Node `json:"children,omitempty"`
}

// HasChildren reports whether the occurrence was given children to show.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Materialize builds the tree rooted at root for the given expansion state.
//
// An occurrence gets children only if it is on screen, i.e. it is the root
// or its parent path is expanded. Visible occurrences get children whether or
// not they are expanded themselves, so expanding one never needs a second
// pass. Undefined modules are leaves labelled with their id.
func Materialize(g *graph.Graph, root graph.ModuleID, expanded ExpansionSet) *Node {
	return materialize(g, RootPath(root), expanded)
}

func materialize(g *graph.Graph, path PathID, expanded ExpansionSet) *Node {
	id := path.Leaf()
	node := &Node{
		Path:  path,
		ID:    id,
		Name:  g.DisplayName(id),
		Level: g.LevelOf(id),
	}

	def, ok := g.Lookup(id)
	if !ok {
		return node
	}

	parent := path.Parent()
	if parent != nil && !expanded.Contains(parent) {
		return node
	}

	node.CanUpgrade = g.CanUpgrade(id)
	node.Children = make([]*Node, 0, len(def.Deps))
	for _, dep := range def.Deps {
		node.Children = append(node.Children, materialize(g, path.Child(dep), expanded))
	}
	return node
}

// Find returns the occurrence at path within n, or nil if it was not
// materialized.
func (n *Node) Find(path PathID) *Node {
	if n == nil || len(path) == 0 || len(path) < len(n.Path) {
		return nil
	}
	if !PathID(path[:len(n.Path)]).Equal(n.Path) {
		return nil
	}
	if len(path) == len(n.Path) {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(path); found != nil {
			return found
		}
	}
	return nil
}
