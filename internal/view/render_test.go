package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/l3aro/flow-dep-graph/pkg/flow"
	"github.com/l3aro/flow-dep-graph/pkg/graph"
	"github.com/l3aro/flow-dep-graph/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGraph = `{
	"app":  {"name": "App",  "flowLevel": "flow",         "deps": ["lib", "util"]},
	"lib":  {"name": "Lib",  "flowLevel": "strict",       "deps": ["leaf"]},
	"util": {"name": "Util", "flowLevel": "strict-local", "deps": ["leaf"]},
	"leaf": {"name": "Leaf", "flowLevel": "strict",       "deps": []}
}`

func loadSample(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.DecodeBytes([]byte(sampleGraph))
	require.NoError(t, err)
	return g
}

func plainOptions() RenderOptions {
	return RenderOptions{
		Styles:       PlainStyles(),
		UpgradeGlyph: "^ ",
		Separator:    tree.DefaultSeparator,
	}
}

func renderLines(t *testing.T, g *graph.Graph, expanded tree.ExpansionSet, opts RenderOptions) []string {
	t.Helper()
	root := tree.Materialize(g, "app", expanded)
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, tree.Flatten(root, expanded), opts))
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func TestRenderText(t *testing.T) {
	g := loadSample(t)

	tests := []struct {
		name     string
		expanded []tree.PathID
		want     []string
	}{
		{
			name:     "root only",
			expanded: []tree.PathID{{"app"}},
			want: []string{
				"▾ ^ App",
				"├── ▸ Lib",
				"└── ▸ ^ Util",
			},
		},
		{
			name:     "nested expansion",
			expanded: []tree.PathID{{"app"}, {"app", "lib"}},
			want: []string{
				"▾ ^ App",
				"├── ▾ Lib",
				"│   └── • Leaf",
				"└── ▸ ^ Util",
			},
		},
		{
			name:     "everything expanded",
			expanded: []tree.PathID{{"app"}, {"app", "lib"}, {"app", "util"}},
			want: []string{
				"▾ ^ App",
				"├── ▾ Lib",
				"│   └── • Leaf",
				"└── ▾ ^ Util",
				"    └── • Leaf",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderLines(t, g, tree.NewExpansionSet(tt.expanded...), plainOptions())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderText_ShowPaths(t *testing.T) {
	g := loadSample(t)
	opts := plainOptions()
	opts.ShowPaths = true
	opts.Separator = "/"

	got := renderLines(t, g, tree.NewExpansionSet(tree.RootPath("app"), tree.PathID{"app", "lib"}), opts)
	require.Len(t, got, 4)
	assert.Equal(t, "▾ ^ App (app)", got[0])
	assert.Equal(t, "│   └── • Leaf (app/lib/leaf)", got[2])
}

func TestRenderText_CustomGlyph(t *testing.T) {
	g := loadSample(t)
	opts := plainOptions()
	opts.UpgradeGlyph = ""

	got := renderLines(t, g, tree.NewExpansionSet(tree.RootPath("app")), opts)
	assert.Equal(t, "▾ App", got[0])
	assert.Equal(t, "└── ▸ Util", got[2])
}

func TestLabel(t *testing.T) {
	n := &tree.Node{Name: "App", CanUpgrade: true}
	assert.Equal(t, "* App", Label(n, "* "))

	n.CanUpgrade = false
	assert.Equal(t, "App", Label(n, "* "))
}

func TestBranchPrefix(t *testing.T) {
	tests := []struct {
		last []bool
		want string
	}{
		{nil, ""},
		{[]bool{false}, "├── "},
		{[]bool{true}, "└── "},
		{[]bool{false, true}, "│   └── "},
		{[]bool{true, false}, "    ├── "},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, branchPrefix(tt.last))
	}
}

func TestLegend(t *testing.T) {
	legend := Legend(plainOptions())
	assert.Contains(t, legend, "Flow levels: none  flow  strict-local  strict  unknown")
	assert.Contains(t, legend, "Items marked with ^ have all-strict deps")
}

func TestStyles_UnknownFallback(t *testing.T) {
	st := DefaultStyles()
	assert.Equal(t, st.Levels[flow.Unknown].Render("x"), st.Level(flow.Level(99)).Render("x"))
}
