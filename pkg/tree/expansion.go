package tree

import (
	"sort"

	"github.com/l3aro/flow-dep-graph/pkg/graph"
)

// ExpansionSet is the set of expanded occurrences. It is a value: every
// change returns a new set and leaves the receiver untouched, so a set handed
// to Materialize can never change underneath it.
type ExpansionSet struct {
	paths map[string]PathID
}

// NewExpansionSet returns a set containing paths. Empty paths are ignored.
func NewExpansionSet(paths ...PathID) ExpansionSet {
	s := ExpansionSet{paths: make(map[string]PathID, len(paths))}
	for _, p := range paths {
		s.add(p)
	}
	return s
}

func (s ExpansionSet) add(p PathID) {
	if len(p) == 0 {
		return
	}
	cp := make(PathID, len(p))
	copy(cp, p)
	s.paths[cp.Key()] = cp
}

func (s ExpansionSet) clone() ExpansionSet {
	c := ExpansionSet{paths: make(map[string]PathID, len(s.paths)+1)}
	for k, p := range s.paths {
		c.paths[k] = p
	}
	return c
}

// Contains reports whether p is expanded.
func (s ExpansionSet) Contains(p PathID) bool {
	if len(p) == 0 || s.paths == nil {
		return false
	}
	_, ok := s.paths[p.Key()]
	return ok
}

// Len returns the number of expanded paths.
func (s ExpansionSet) Len() int {
	return len(s.paths)
}

// With returns a copy of s with p expanded.
func (s ExpansionSet) With(p PathID) ExpansionSet {
	c := s.clone()
	c.add(p)
	return c
}

// Without returns a copy of s with p collapsed. Descendants of p keep their
// own state and reappear expanded when p is expanded again.
func (s ExpansionSet) Without(p PathID) ExpansionSet {
	c := s.clone()
	delete(c.paths, p.Key())
	return c
}

// Toggle returns a copy of s with p's membership flipped.
func (s ExpansionSet) Toggle(p PathID) ExpansionSet {
	if s.Contains(p) {
		return s.Without(p)
	}
	return s.With(p)
}

// Paths returns the members ordered by depth, then lexically.
func (s ExpansionSet) Paths() []PathID {
	out := make([]PathID, 0, len(s.paths))
	for _, p := range s.paths {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// ExpandToDepth returns a set expanding every occurrence reachable from root
// whose depth is below depth. A depth of 1 expands only the root. The walk is
// bounded by depth, so cycles terminate.
func ExpandToDepth(g *graph.Graph, root graph.ModuleID, depth int) ExpansionSet {
	s := NewExpansionSet()
	var walk func(p PathID)
	walk = func(p PathID) {
		if p.Depth() >= depth {
			return
		}
		m, ok := g.Lookup(p.Leaf())
		if !ok {
			return
		}
		s.add(p)
		for _, dep := range m.Deps {
			walk(p.Child(dep))
		}
	}
	walk(RootPath(root))
	return s
}
