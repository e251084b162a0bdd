// Package view renders materialized dependency trees, either as plain text
// or as an interactive terminal UI.
//
// # Thread Safety
//
// Model is designed for single-threaded use within the bubbletea event
// loop. Background work (file reloads) reaches it only as messages.
package view

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/l3aro/flow-dep-graph/pkg/flow"
)

// Styles holds every style the renderers use.
type Styles struct {
	Levels   map[flow.Level]lipgloss.Style
	Branch   lipgloss.Style
	Selected lipgloss.Style
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles uses one distinct style per level: red for none, amber for
// flow, green for strict-local, struck-through gray for strict and purple for
// unknown.
func DefaultStyles() Styles {
	return Styles{
		Levels: map[flow.Level]lipgloss.Style{
			flow.None: lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5F5F"}),
			flow.Flow: lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#CC9900", Dark: "#FFAF00"}),
			flow.StrictLocal: lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#006600", Dark: "#5FAF5F"}),
			flow.Strict: lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Strikethrough(true),
			flow.Unknown: lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#800080", Dark: "#AF87FF"}),
		},
		Branch:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Selected: lipgloss.NewStyle().Reverse(true),
		Title:    lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// PlainStyles renders text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	levels := make(map[flow.Level]lipgloss.Style, len(flow.Levels))
	for _, l := range flow.Levels {
		levels[l] = plain
	}
	return Styles{
		Levels:   levels,
		Branch:   plain,
		Selected: plain,
		Title:    plain,
		Muted:    plain,
		Status:   plain,
		Error:    plain,
	}
}

// Level returns the style for l.
func (s Styles) Level(l flow.Level) lipgloss.Style {
	if st, ok := s.Levels[l]; ok {
		return st
	}
	return s.Levels[flow.Unknown]
}
