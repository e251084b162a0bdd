package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/l3aro/flow-dep-graph/internal/config"
	"github.com/l3aro/flow-dep-graph/internal/ingest"
	"github.com/l3aro/flow-dep-graph/internal/log"
	"github.com/l3aro/flow-dep-graph/internal/view"
	"github.com/l3aro/flow-dep-graph/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGraph = `{
	"app":  {"name": "App",  "flowLevel": "flow",         "deps": ["lib", "util"]},
	"lib":  {"name": "Lib",  "flowLevel": "strict",       "deps": ["leaf"]},
	"util": {"name": "Util", "flowLevel": "strict-local", "deps": ["leaf"]},
	"leaf": {"name": "Leaf", "flowLevel": "strict",       "deps": []}
}`

func sample(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.DecodeBytes([]byte(sampleGraph))
	require.NoError(t, err)
	return g
}

func plainTreeOptions() treeOptions {
	return treeOptions{
		render: view.RenderOptions{
			Styles:       view.PlainStyles(),
			UpgradeGlyph: "^ ",
			Separator:    ">",
		},
	}
}

func TestRunTree(t *testing.T) {
	tests := []struct {
		name    string
		expand  []string
		depth   int
		root    string
		want    []string
		notWant []string
	}{
		{
			name:    "root only",
			want:    []string{"▾ ^ App", "├── ▸ Lib", "└── ▸ ^ Util"},
			notWant: []string{"Leaf"},
		},
		{
			name:    "expand path",
			expand:  []string{"app>lib"},
			want:    []string{"├── ▾ Lib", "│   └── • Leaf", "└── ▸ ^ Util"},
			notWant: []string{"    └── • Leaf"},
		},
		{
			name:  "depth",
			depth: 2,
			want:  []string{"│   └── • Leaf", "└── ▾ ^ Util", "    └── • Leaf"},
		},
		{
			name: "root override",
			root: "util",
			want: []string{"▾ ^ Util", "└── • Leaf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := plainTreeOptions()
			opts.expand = tt.expand
			opts.depth = tt.depth
			opts.root = tt.root

			var buf bytes.Buffer
			require.NoError(t, runTree(&buf, sample(t), opts))
			out := buf.String()

			assert.Contains(t, out, "Flow levels:")
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, out, w)
			}
		})
	}
}

func TestRunTree_PathMustStartAtRoot(t *testing.T) {
	opts := plainTreeOptions()
	opts.expand = []string{"lib>leaf"}

	var buf bytes.Buffer
	err := runTree(&buf, sample(t), opts)
	assert.ErrorContains(t, err, "does not start at root")
}

func TestRunTree_EmptyGraph(t *testing.T) {
	g, err := graph.DecodeBytes([]byte(`{}`))
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, runTree(&buf, g, plainTreeOptions()))
}

func TestRunTree_JSON(t *testing.T) {
	opts := plainTreeOptions()
	opts.jsonOutput = true

	var buf bytes.Buffer
	require.NoError(t, runTree(&buf, sample(t), opts))

	var node struct {
		ID         string `json:"id"`
		Level      string `json:"level"`
		CanUpgrade bool   `json:"canUpgrade"`
		Children   []struct {
			ID   string   `json:"id"`
			Path []string `json:"path"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &node))
	assert.Equal(t, "app", node.ID)
	assert.Equal(t, "flow", node.Level)
	assert.True(t, node.CanUpgrade)
	require.Len(t, node.Children, 2)
	assert.Equal(t, []string{"app", "util"}, node.Children[1].Path)
}

func TestRunUpgrades(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runUpgrades(&buf, sample(t), false))
	assert.Equal(t, "app\tApp\t(flow)\nutil\tUtil\t(strict-local)\n", buf.String())

	buf.Reset()
	require.NoError(t, runUpgrades(&buf, sample(t), true))
	var ups []Upgrade
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ups))
	require.Len(t, ups, 2)
	assert.Equal(t, graph.ModuleID("util"), ups[1].ID)
	assert.Equal(t, "strict-local", ups[1].Level)
}

func TestRunUpgrades_None(t *testing.T) {
	g, err := graph.DecodeBytes([]byte(`{"solo": {"name": "Solo", "flowLevel": "strict"}}`))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, runUpgrades(&buf, g, false))
	assert.Equal(t, "No modules can be upgraded.\n", buf.String())
}

func TestLoadGraphFile_Testdata(t *testing.T) {
	appConfig = config.DefaultConfig()
	appConfig.CacheEnabled = false
	logger = log.Discard()

	res, err := loadGraphFile("../../../testdata/deps.json")
	require.NoError(t, err)
	assert.Equal(t, 7, res.Graph.Len())
	assert.Equal(t, "legacy", res.Graph.DisplayName("legacy"))

	var buf bytes.Buffer
	require.NoError(t, runUpgrades(&buf, res.Graph, false))
	assert.Equal(t, "router\tRouter\t(strict-local)\n", buf.String())

	_, err = loadGraphFile("../../../go.mod")
	assert.ErrorIs(t, err, ingest.ErrTypeMismatch)
}
