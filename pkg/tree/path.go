// Package tree materializes a possibly cyclic module graph as an expandable
// tree.
//
// A node occurrence is identified by its path from the root, not by its
// module id, so the same module reached along different paths (or around a
// cycle) yields distinct nodes that expand independently. Depth is bounded by
// which paths are expanded, never by the shape of the graph.
package tree

import (
	"strconv"
	"strings"

	"github.com/l3aro/flow-dep-graph/pkg/graph"
)

// DefaultSeparator joins path segments for display and parsing.
const DefaultSeparator = ">"

// PathID is the chain of module ids from the root to one occurrence.
type PathID []graph.ModuleID

// RootPath returns the path of the root occurrence.
func RootPath(root graph.ModuleID) PathID {
	return PathID{root}
}

// Child returns a new path extending p with id. p is not modified.
func (p PathID) Child(id graph.ModuleID) PathID {
	child := make(PathID, len(p)+1)
	copy(child, p)
	child[len(p)] = id
	return child
}

// Parent returns the path of the enclosing occurrence, or nil for the root.
func (p PathID) Parent() PathID {
	if len(p) <= 1 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Leaf returns the module id of the occurrence.
func (p PathID) Leaf() graph.ModuleID {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Depth is the number of edges from the root; the root has depth 0.
func (p PathID) Depth() int {
	return len(p) - 1
}

// Equal reports whether two paths name the same occurrence.
func (p PathID) Equal(o PathID) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Key returns an unambiguous map key for the path. Each segment is length
// prefixed, so ids containing the display separator cannot collide.
func (p PathID) Key() string {
	var sb strings.Builder
	for _, id := range p {
		sb.WriteString(strconv.Itoa(len(id)))
		sb.WriteByte(':')
		sb.WriteString(string(id))
	}
	return sb.String()
}

// Format joins the path with sep for display.
func (p PathID) Format(sep string) string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = string(id)
	}
	return strings.Join(parts, sep)
}

func (p PathID) String() string {
	return p.Format(DefaultSeparator)
}

// ParsePath splits s on sep. Empty input yields nil.
func ParsePath(s, sep string) PathID {
	if s == "" {
		return nil
	}
	if sep == "" {
		sep = DefaultSeparator
	}
	parts := strings.Split(s, sep)
	p := make(PathID, len(parts))
	for i, part := range parts {
		p[i] = graph.ModuleID(part)
	}
	return p
}
