package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/l3aro/flow-dep-graph/internal/log"
	"github.com/l3aro/flow-dep-graph/internal/view"
	"github.com/l3aro/flow-dep-graph/pkg/graph"
	"github.com/l3aro/flow-dep-graph/pkg/tree"
)

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Print the dependency tree",
	Long: `Prints the dependency tree of a graph file. Only the root is expanded unless
paths are given with --expand or a depth with --depth. Paths are module ids
joined with the configured separator, starting at the root, e.g. app>lib.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadGraphFile(args[0])
		if err != nil {
			return err
		}

		opts := treeOptions{}
		opts.root, _ = cmd.Flags().GetString("root")
		opts.expand, _ = cmd.Flags().GetStringArray("expand")
		opts.depth, _ = cmd.Flags().GetInt("depth")
		opts.jsonOutput, _ = cmd.Flags().GetBool("json")
		opts.showPaths, _ = cmd.Flags().GetBool("paths")
		noColor, _ := cmd.Flags().GetBool("no-color")

		opts.render = view.DefaultRenderOptions()
		opts.render.UpgradeGlyph = appConfig.UpgradeGlyph
		opts.render.Separator = appConfig.PathSeparator
		if sep, _ := cmd.Flags().GetString("sep"); sep != "" {
			opts.render.Separator = sep
		}
		if noColor || !log.IsTTY() {
			opts.render.Styles = view.PlainStyles()
		}
		opts.render.ShowPaths = opts.showPaths

		return runTree(cmd.OutOrStdout(), res.Graph, opts)
	},
}

type treeOptions struct {
	root       string
	expand     []string
	depth      int
	jsonOutput bool
	showPaths  bool
	render     view.RenderOptions
}

func runTree(w io.Writer, g *graph.Graph, opts treeOptions) error {
	session := tree.NewSession()
	if err := session.Load(g, graph.ModuleID(opts.root)); err != nil {
		return err
	}
	root := session.Root()

	expanded := session.Expanded()
	if opts.depth > 0 {
		expanded = tree.ExpandToDepth(g, root, opts.depth)
	}
	for _, s := range opts.expand {
		p := tree.ParsePath(s, opts.render.Separator)
		if len(p) == 0 {
			continue
		}
		if p[0] != root {
			return fmt.Errorf("path %q does not start at root %q", s, root)
		}
		expanded = expanded.With(p)
	}
	session.SetExpanded(expanded)

	node := session.Materialize()
	if opts.jsonOutput {
		data, err := json.MarshalIndent(node, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if _, err := fmt.Fprintln(w, view.Legend(opts.render)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return view.RenderText(w, tree.Flatten(node, expanded), opts.render)
}

func init() {
	treeCmd.Flags().StringArrayP("expand", "e", nil, "Expand the occurrence at PATH (repeatable)")
	treeCmd.Flags().IntP("depth", "d", 0, "Expand every occurrence down to this depth")
	treeCmd.Flags().String("root", "", "Module id to use as root (default: first module in the file)")
	treeCmd.Flags().String("sep", "", "Path separator (default from config)")
	treeCmd.Flags().BoolP("paths", "p", false, "Show each occurrence's path")
	treeCmd.Flags().Bool("no-color", false, "Disable colors")
	treeCmd.Flags().BoolP("json", "j", false, "Output the materialized tree as JSON")
	RootCmd.AddCommand(treeCmd)
}
