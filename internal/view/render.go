package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/l3aro/flow-dep-graph/pkg/flow"
	"github.com/l3aro/flow-dep-graph/pkg/tree"
)

// DefaultUpgradeGlyph marks modules that could be made strict.
const DefaultUpgradeGlyph = "⬆️ "

// RenderOptions controls how rows are drawn.
type RenderOptions struct {
	Styles       Styles
	UpgradeGlyph string
	// ShowPaths appends each occurrence's path, joined with Separator.
	ShowPaths bool
	Separator string
}

// DefaultRenderOptions returns colored output with the default glyph.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Styles:       DefaultStyles(),
		UpgradeGlyph: DefaultUpgradeGlyph,
		Separator:    tree.DefaultSeparator,
	}
}

// RenderText writes one line per row.
func RenderText(w io.Writer, rows []tree.Row, opts RenderOptions) error {
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, renderRow(row, opts)); err != nil {
			return err
		}
	}
	return nil
}

// Label returns the text shown for a node, before styling.
func Label(n *tree.Node, glyph string) string {
	if n.CanUpgrade {
		return glyph + n.Name
	}
	return n.Name
}

func renderRow(row tree.Row, opts RenderOptions) string {
	st := opts.Styles
	var sb strings.Builder

	sb.WriteString(st.Branch.Render(branchPrefix(row.Last)))
	sb.WriteString(st.Branch.Render(indicator(row)))
	sb.WriteString(" ")
	sb.WriteString(st.Level(row.Node.Level).Render(Label(row.Node, opts.UpgradeGlyph)))

	if opts.ShowPaths {
		sep := opts.Separator
		if sep == "" {
			sep = tree.DefaultSeparator
		}
		sb.WriteString(" ")
		sb.WriteString(st.Muted.Render("(" + row.Node.Path.Format(sep) + ")"))
	}
	return sb.String()
}

// branchPrefix draws the indentation and branch characters for a row.
func branchPrefix(last []bool) string {
	if len(last) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, l := range last[:len(last)-1] {
		if l {
			sb.WriteString("    ")
		} else {
			sb.WriteString("│   ")
		}
	}
	if last[len(last)-1] {
		sb.WriteString("└── ")
	} else {
		sb.WriteString("├── ")
	}
	return sb.String()
}

func indicator(row tree.Row) string {
	switch {
	case !row.Expandable():
		return "•"
	case row.Expanded:
		return "▾"
	default:
		return "▸"
	}
}

// Legend lists the level styles in order, followed by the glyph's meaning.
func Legend(opts RenderOptions) string {
	parts := make([]string, 0, len(flow.Levels))
	for _, l := range flow.Levels {
		parts = append(parts, opts.Styles.Level(l).Render(l.String()))
	}
	return "Flow levels: " + strings.Join(parts, "  ") + "\n" +
		opts.Styles.Muted.Render(fmt.Sprintf("Items marked with %shave all-strict deps and can be upgraded to \"strict\".", opts.UpgradeGlyph))
}
