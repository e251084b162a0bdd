package tree

import (
	"testing"

	"github.com/l3aro/flow-dep-graph/pkg/flow"
	"github.com/l3aro/flow-dep-graph/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func p(ids ...graph.ModuleID) PathID {
	return PathID(ids)
}

func newGraph(order []graph.ModuleID, modules map[graph.ModuleID]graph.Module) *graph.Graph {
	return graph.FromModules(order, modules)
}

// chain follows the first child repeatedly and returns the visited paths.
func chain(n *Node) []PathID {
	var out []PathID
	for n != nil {
		out = append(out, n.Path)
		if len(n.Children) == 0 {
			break
		}
		n = n.Children[0]
	}
	return out
}

func TestMaterialize_Laziness(t *testing.T) {
	g := newGraph([]graph.ModuleID{"A", "B", "C", "D"}, map[graph.ModuleID]graph.Module{
		"A": {Name: "a", Level: flow.Flow, Deps: []graph.ModuleID{"B", "C"}},
		"B": {Name: "b", Level: flow.Strict, Deps: []graph.ModuleID{"D"}},
		"C": {Name: "c", Level: flow.Strict},
		"D": {Name: "d", Level: flow.None, Deps: []graph.ModuleID{"A"}},
	})

	root := Materialize(g, "A", NewExpansionSet(p("A")))
	require.NotNil(t, root)
	assert.True(t, root.Path.Equal(p("A")))
	require.Len(t, root.Children, 2)

	// Children of the expanded root are visible, so they carry their own
	// children, ready to be expanded.
	b := root.Children[0]
	assert.True(t, b.Path.Equal(p("A", "B")))
	require.Len(t, b.Children, 1)

	// Grandchildren are not visible and stop the recursion.
	d := b.Children[0]
	assert.True(t, d.Path.Equal(p("A", "B", "D")))
	assert.Nil(t, d.Children)
	assert.False(t, d.CanUpgrade, "upgrade is only computed for visible occurrences")

	c := root.Children[1]
	assert.NotNil(t, c.Children, "computed with no deps")
	assert.Empty(t, c.Children)
}

func TestMaterialize_RootAlwaysHasChildren(t *testing.T) {
	g := newGraph([]graph.ModuleID{"A", "B"}, map[graph.ModuleID]graph.Module{
		"A": {Deps: []graph.ModuleID{"B"}},
		"B": {Deps: []graph.ModuleID{"A"}},
	})

	root := Materialize(g, "A", NewExpansionSet())
	require.Len(t, root.Children, 1)
	assert.Nil(t, root.Children[0].Children, "root collapsed, so child is hidden")
}

func TestMaterialize_Idempotent(t *testing.T) {
	g := newGraph([]graph.ModuleID{"A", "B", "C"}, map[graph.ModuleID]graph.Module{
		"A": {Name: "a", Level: flow.Flow, Deps: []graph.ModuleID{"B", "C", "X"}},
		"B": {Name: "b", Level: flow.StrictLocal, Deps: []graph.ModuleID{"C", "A"}},
		"C": {Name: "c", Level: flow.Strict},
	})
	set := NewExpansionSet(p("A"), p("A", "B"))

	first := Materialize(g, "A", set)
	second := Materialize(g, "A", set)
	assert.Equal(t, first, second)
}

func TestMaterialize_CycleSafety(t *testing.T) {
	g := newGraph([]graph.ModuleID{"A", "B"}, map[graph.ModuleID]graph.Module{
		"A": {Name: "A", Level: flow.Flow, Deps: []graph.ModuleID{"B"}},
		"B": {Name: "B", Level: flow.Flow, Deps: []graph.ModuleID{"A"}},
	})
	set := NewExpansionSet(p("A"), p("A", "B"), p("A", "B", "A"))

	root := Materialize(g, "A", set)

	paths := chain(root)
	require.Len(t, paths, 5)
	assert.Equal(t, []PathID{
		p("A"),
		p("A", "B"),
		p("A", "B", "A"),
		p("A", "B", "A", "B"),
		p("A", "B", "A", "B", "A"),
	}, paths)

	// The fourth occurrence is visible (its parent is expanded) but not
	// expanded itself; its child exists and stops the recursion.
	last := root.Find(p("A", "B", "A", "B", "A"))
	require.NotNil(t, last)
	assert.Nil(t, last.Children)

	rows := Flatten(root, set)
	require.Len(t, rows, 4)
	for i, row := range rows {
		assert.Equal(t, i, row.Depth)
	}
	assert.Equal(t, graph.ModuleID("B"), rows[3].Node.ID)
	assert.False(t, rows[3].Expanded)

	seen := map[string]bool{}
	for _, pth := range paths {
		assert.False(t, seen[pth.Key()], "path %s repeated", pth)
		seen[pth.Key()] = true
	}
}

func TestMaterialize_DanglingReference(t *testing.T) {
	g := newGraph([]graph.ModuleID{"A"}, map[graph.ModuleID]graph.Module{
		"A": {Name: "a", Level: flow.Flow, Deps: []graph.ModuleID{"X"}},
	})

	root := Materialize(g, "A", NewExpansionSet(p("A")))
	require.Len(t, root.Children, 1)

	x := root.Children[0]
	assert.Equal(t, "X", x.Name)
	assert.Equal(t, flow.Unknown, x.Level)
	assert.False(t, x.CanUpgrade)
	assert.Nil(t, x.Children)

	// Expanding a dangling occurrence still yields nothing.
	root = Materialize(g, "A", NewExpansionSet(p("A"), p("A", "X")))
	assert.Nil(t, root.Children[0].Children)
}

func TestMaterialize_NullDefinitionIsLeaf(t *testing.T) {
	g, err := graph.DecodeBytes([]byte(`{"R": {"name": "r", "flowLevel": "flow", "deps": ["A"]}, "A": null}`))
	require.NoError(t, err)

	root := Materialize(g, "R", NewExpansionSet(p("R"), p("R", "A")))
	require.Len(t, root.Children, 1)

	a := root.Children[0]
	assert.Equal(t, "A", a.Name)
	assert.Equal(t, flow.Unknown, a.Level)
	assert.False(t, a.CanUpgrade)
	assert.Nil(t, a.Children)
	assert.False(t, root.CanUpgrade)
}

func TestMaterialize_MissingRoot(t *testing.T) {
	g := newGraph([]graph.ModuleID{"A"}, map[graph.ModuleID]graph.Module{"A": {}})

	root := Materialize(g, "nope", NewExpansionSet(p("nope")))
	assert.Equal(t, "nope", root.Name)
	assert.Equal(t, flow.Unknown, root.Level)
	assert.Nil(t, root.Children)
}

func TestMaterialize_UpgradeRule(t *testing.T) {
	modules := map[graph.ModuleID]graph.Module{
		"A": {Level: flow.Flow, Deps: []graph.ModuleID{"B", "C"}},
		"B": {Level: flow.Strict},
		"C": {Level: flow.StrictLocal},
	}
	g := newGraph([]graph.ModuleID{"A", "B", "C"}, modules)
	root := Materialize(g, "A", NewExpansionSet(p("A")))
	assert.True(t, root.CanUpgrade)

	modules["A"] = graph.Module{Level: flow.Strict, Deps: []graph.ModuleID{"B", "C"}}
	g = newGraph([]graph.ModuleID{"A", "B", "C"}, modules)
	root = Materialize(g, "A", NewExpansionSet(p("A")))
	assert.False(t, root.CanUpgrade, "already strict")
}

func TestMaterialize_UnknownPoisonsAggregation(t *testing.T) {
	g := newGraph([]graph.ModuleID{"A", "B"}, map[graph.ModuleID]graph.Module{
		"A": {Level: flow.Flow, Deps: []graph.ModuleID{"B"}},
		"B": {Level: flow.Unknown},
	})

	root := Materialize(g, "A", NewExpansionSet(p("A")))
	assert.False(t, root.CanUpgrade)

	// An undefined dependency counts as unknown as well.
	g = newGraph([]graph.ModuleID{"A"}, map[graph.ModuleID]graph.Module{
		"A": {Level: flow.Flow, Deps: []graph.ModuleID{"ghost"}},
	})
	root = Materialize(g, "A", NewExpansionSet(p("A")))
	assert.False(t, root.CanUpgrade)
}

func TestMaterialize_ExpansionIndependence(t *testing.T) {
	g := newGraph([]graph.ModuleID{"A", "B", "C", "D"}, map[graph.ModuleID]graph.Module{
		"A": {Deps: []graph.ModuleID{"B", "C"}},
		"B": {Deps: []graph.ModuleID{"D"}},
		"C": {Deps: []graph.ModuleID{"B"}},
		"D": {},
	})

	viaA := p("A", "B")
	viaC := p("A", "C", "B")

	set := NewExpansionSet(p("A"), p("A", "C"), viaA)
	root := Materialize(g, "A", set)
	require.NotNil(t, root.Find(viaA))
	require.NotNil(t, root.Find(viaC))

	// [A,B] expanded: its child D is visible and carries computed children.
	assert.NotNil(t, root.Find(viaA.Child("D")).Children)
	// [A,C,B] is not expanded: its child D exists but is not visible.
	assert.Nil(t, root.Find(viaC.Child("D")).Children)

	set = set.Without(viaA).With(viaC)
	root = Materialize(g, "A", set)
	assert.Nil(t, root.Find(viaA.Child("D")).Children)
	assert.NotNil(t, root.Find(viaC.Child("D")).Children)
}

func TestFind(t *testing.T) {
	g := newGraph([]graph.ModuleID{"A", "B"}, map[graph.ModuleID]graph.Module{
		"A": {Deps: []graph.ModuleID{"B"}},
		"B": {Deps: []graph.ModuleID{"A"}},
	})
	root := Materialize(g, "A", NewExpansionSet(p("A")))

	assert.Same(t, root, root.Find(p("A")))
	assert.Same(t, root.Children[0], root.Find(p("A", "B")))
	assert.NotNil(t, root.Find(p("A", "B", "A")))
	assert.Nil(t, root.Find(p("A", "B", "A", "B")), "not materialized")
	assert.Nil(t, root.Find(p("B")))
	assert.Nil(t, root.Find(nil))
}
