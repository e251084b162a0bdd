package tree

import (
	"errors"

	"github.com/l3aro/flow-dep-graph/pkg/graph"
)

// ErrEmptyGraph is returned when loading a graph with no modules.
var ErrEmptyGraph = errors.New("graph has no modules")

// Session owns the current graph and the current expansion state. Both are
// replaced wholesale, never edited in place. A Session is not safe for
// concurrent use; callers serialize events through a single loop.
type Session struct {
	graph    *graph.Graph
	root     graph.ModuleID
	expanded ExpansionSet
}

// NewSession returns a session with no graph loaded.
func NewSession() *Session {
	return &Session{expanded: NewExpansionSet()}
}

// Load replaces the graph and resets expansion to the root alone. The root
// is the graph's first module unless root is given. On error the previous
// state is kept.
func (s *Session) Load(g *graph.Graph, root ...graph.ModuleID) error {
	first, ok := g.Root()
	if !ok {
		return ErrEmptyGraph
	}
	if len(root) > 0 && root[0] != "" {
		first = root[0]
	}
	s.graph = g
	s.root = first
	s.expanded = NewExpansionSet(RootPath(first))
	return nil
}

// Loaded reports whether a graph is present.
func (s *Session) Loaded() bool {
	return s.graph != nil
}

// Graph returns the current graph, or nil.
func (s *Session) Graph() *graph.Graph {
	return s.graph
}

// Root returns the root module id.
func (s *Session) Root() graph.ModuleID {
	return s.root
}

// Expanded returns the current expansion set.
func (s *Session) Expanded() ExpansionSet {
	return s.expanded
}

// SetExpanded replaces the expansion set.
func (s *Session) SetExpanded(set ExpansionSet) {
	s.expanded = set
}

// Toggle flips p and installs the resulting set.
func (s *Session) Toggle(p PathID) ExpansionSet {
	s.expanded = s.expanded.Toggle(p)
	return s.expanded
}

// Materialize renders the current graph, or returns nil if none is loaded.
func (s *Session) Materialize() *Node {
	if s.graph == nil {
		return nil
	}
	return Materialize(s.graph, s.root, s.expanded)
}
