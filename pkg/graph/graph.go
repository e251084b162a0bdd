// Package graph holds a module dependency graph as loaded from a JSON file.
//
// A Graph is immutable once built. Dependencies may name modules that are
// not in the graph, and may form cycles; neither is an error.
package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/l3aro/flow-dep-graph/pkg/flow"
)

// ErrParse is returned when input is not a JSON object of module definitions.
var ErrParse = errors.New("malformed graph")

// ModuleID identifies a module. It is opaque.
type ModuleID string

// Module is a module definition.
type Module struct {
	Name  string     `json:"name"`
	Level flow.Level `json:"flowLevel"`
	Deps  []ModuleID `json:"deps"`
}

// Graph maps module ids to definitions and remembers insertion order.
type Graph struct {
	order   []ModuleID
	modules map[ModuleID]Module
}

// FromModules builds a graph from an explicit order. Ids in order that have
// no entry in modules are skipped; entries missing from order are appended
// in no particular order.
func FromModules(order []ModuleID, modules map[ModuleID]Module) *Graph {
	g := &Graph{modules: make(map[ModuleID]Module, len(modules))}
	for _, id := range order {
		if m, ok := modules[id]; ok {
			g.set(id, m)
		}
	}
	for id, m := range modules {
		g.set(id, m)
	}
	return g
}

func (g *Graph) set(id ModuleID, m Module) {
	if _, exists := g.modules[id]; !exists {
		g.order = append(g.order, id)
	}
	g.modules[id] = m
}

// unset drops id, leaving references to it dangling.
func (g *Graph) unset(id ModuleID) {
	if _, exists := g.modules[id]; !exists {
		return
	}
	delete(g.modules, id)
	for i, o := range g.order {
		if o == id {
			g.order = append(g.order[:i:i], g.order[i+1:]...)
			break
		}
	}
}

// Decode reads a JSON object mapping module ids to definitions.
// Key order is kept; the first key becomes the root. A repeated key keeps its
// first position and its last value. A null definition leaves the id
// undefined.
func Decode(r io.Reader) (*Graph, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top level must be an object, got %v", ErrParse, tok)
	}

	g := &Graph{modules: make(map[ModuleID]Module)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrParse, tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: module %q: %v", ErrParse, key, err)
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			g.unset(ModuleID(key))
			continue
		}
		var m Module
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: module %q: %v", ErrParse, key, err)
		}
		g.set(ModuleID(key), m)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", ErrParse)
	}

	return g, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(data []byte) (*Graph, error) {
	return Decode(bytes.NewReader(data))
}

// Lookup returns the definition of id. A missing id is a dangling reference,
// not an error.
func (g *Graph) Lookup(id ModuleID) (Module, bool) {
	if g == nil {
		return Module{}, false
	}
	m, ok := g.modules[id]
	return m, ok
}

// Root returns the first module in insertion order.
func (g *Graph) Root() (ModuleID, bool) {
	if g == nil || len(g.order) == 0 {
		return "", false
	}
	return g.order[0], true
}

// IDs returns module ids in insertion order.
func (g *Graph) IDs() []ModuleID {
	if g == nil {
		return nil
	}
	ids := make([]ModuleID, len(g.order))
	copy(ids, g.order)
	return ids
}

// Len returns the number of defined modules.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

// DisplayName returns the module's name, or the raw id when the module is
// undefined or unnamed.
func (g *Graph) DisplayName(id ModuleID) string {
	if m, ok := g.Lookup(id); ok && m.Name != "" {
		return m.Name
	}
	return string(id)
}

// LevelOf returns the module's level, or Unknown when it is undefined.
func (g *Graph) LevelOf(id ModuleID) flow.Level {
	if m, ok := g.Lookup(id); ok {
		return m.Level
	}
	return flow.Unknown
}

// CanUpgrade applies flow.CanUpgrade to a defined module using the levels of
// its direct dependencies. Undefined modules cannot be upgraded.
func (g *Graph) CanUpgrade(id ModuleID) bool {
	m, ok := g.Lookup(id)
	if !ok {
		return false
	}
	deps := make([]flow.Level, len(m.Deps))
	for i, dep := range m.Deps {
		deps[i] = g.LevelOf(dep)
	}
	return flow.CanUpgrade(m.Level, deps)
}

// Upgradeable returns, in insertion order, every module that CanUpgrade.
func (g *Graph) Upgradeable() []ModuleID {
	var ids []ModuleID
	for _, id := range g.IDs() {
		if g.CanUpgrade(id) {
			ids = append(ids, id)
		}
	}
	return ids
}
