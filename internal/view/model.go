package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/l3aro/flow-dep-graph/internal/ingest"
	"github.com/l3aro/flow-dep-graph/internal/log"
	"github.com/l3aro/flow-dep-graph/pkg/graph"
	"github.com/l3aro/flow-dep-graph/pkg/tree"
)

// GraphLoadedMsg replaces the current graph.
type GraphLoadedMsg struct {
	Result *ingest.Result
}

// LoadFailedMsg reports a load that produced no graph. The current graph is
// kept.
type LoadFailedMsg struct {
	Err error
}

// ReloadMsg converts a reload outcome into a message.
func ReloadMsg(res *ingest.Result, err error) tea.Msg {
	if err != nil {
		return LoadFailedMsg{Err: err}
	}
	return GraphLoadedMsg{Result: res}
}

// Options configures the interactive model.
type Options struct {
	Render RenderOptions
	// Root overrides the graph's first module as the tree root.
	Root   graph.ModuleID
	Logger log.Logger
}

// Model is the bubbletea model of the interactive tree.
type Model struct {
	session *tree.Session
	opts    Options
	keys    keyMap
	help    help.Model

	viewport viewport.Model
	width    int
	height   int
	ready    bool

	root   *tree.Node
	rows   []tree.Row
	cursor int

	source    string
	status    string
	statusErr bool
	showHelp  bool
	quitting  bool
}

const (
	headerHeight = 4
	footerHeight = 2
)

// NewModel creates a model over session, which may be empty until a
// GraphLoadedMsg arrives.
func NewModel(session *tree.Session, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	m := Model{
		session: session,
		opts:    opts,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		vh := m.height - headerHeight - footerHeight
		if vh < 1 {
			vh = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vh)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vh
		}
		m.syncViewport()
		return m, nil

	case GraphLoadedMsg:
		m.loadGraph(msg.Result)
		return m, nil

	case LoadFailedMsg:
		if errors.Is(msg.Err, ingest.ErrTypeMismatch) {
			return m, nil
		}
		m.opts.Logger.Error("graph reload failed", "error", msg.Err)
		m.status = msg.Err.Error()
		m.statusErr = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Quit) || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Up):
		m.moveTo(m.cursor - 1)
	case key.Matches(msg, m.keys.Down):
		m.moveTo(m.cursor + 1)
	case key.Matches(msg, m.keys.Top):
		m.moveTo(0)
	case key.Matches(msg, m.keys.Bottom):
		m.moveTo(len(m.rows) - 1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveTo(m.cursor - m.pageSize())
	case key.Matches(msg, m.keys.PageDown):
		m.moveTo(m.cursor + m.pageSize())
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.Expand):
		m.expandOrDescend()
	case key.Matches(msg, m.keys.Collapse):
		m.collapseOrAscend()
	case key.Matches(msg, m.keys.Paths):
		m.opts.Render.ShowPaths = !m.opts.Render.ShowPaths
		m.syncViewport()
	}
	return m, nil
}

func (m *Model) loadGraph(res *ingest.Result) {
	if res == nil || res.Graph == nil {
		return
	}
	if err := m.session.Load(res.Graph, m.opts.Root); err != nil {
		m.status = fmt.Sprintf("%s: %v", res.Path, err)
		m.statusErr = true
		return
	}
	m.source = res.Path
	m.status = fmt.Sprintf("loaded %d modules", res.Graph.Len())
	if res.Repaired {
		m.status += " (repaired JSON)"
	}
	m.statusErr = false
	m.opts.Logger.Info("graph loaded", "path", res.Path, "modules", res.Graph.Len(), "cached", res.Cached)
	m.cursor = 0
	m.refresh()
}

// setExpanded installs a new expansion set and re-materializes.
func (m *Model) setExpanded(set tree.ExpansionSet) {
	m.session.SetExpanded(set)
	m.refresh()
}

func (m *Model) toggle() {
	row, ok := m.selected()
	if !ok || !row.Expandable() {
		return
	}
	m.setExpanded(m.session.Expanded().Toggle(row.Node.Path))
}

func (m *Model) expandOrDescend() {
	row, ok := m.selected()
	if !ok || !row.Expandable() {
		return
	}
	if !row.Expanded {
		m.setExpanded(m.session.Expanded().With(row.Node.Path))
		return
	}
	m.moveTo(m.cursor + 1)
}

func (m *Model) collapseOrAscend() {
	row, ok := m.selected()
	if !ok {
		return
	}
	if row.Expanded && row.Expandable() {
		m.setExpanded(m.session.Expanded().Without(row.Node.Path))
		return
	}
	parent := row.Node.Path.Parent()
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].Node.Path.Equal(parent) {
			m.moveTo(i)
			return
		}
	}
}

// refresh recomputes the tree from the session.
func (m *Model) refresh() {
	m.root = m.session.Materialize()
	m.rows = tree.Flatten(m.root, m.session.Expanded())
	m.moveTo(m.cursor)
}

func (m *Model) moveTo(i int) {
	if i >= len(m.rows) {
		i = len(m.rows) - 1
	}
	if i < 0 {
		i = 0
	}
	m.cursor = i
	m.syncViewport()
}

func (m *Model) pageSize() int {
	if m.ready && m.viewport.Height > 1 {
		return m.viewport.Height / 2
	}
	return 10
}

// syncViewport redraws the rows and scrolls the cursor into view.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	lines := make([]string, len(m.rows))
	for i, row := range m.rows {
		line := renderRow(row, m.opts.Render)
		if i == m.cursor {
			line = m.opts.Render.Styles.Selected.Render(line)
		}
		lines[i] = line
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m Model) selected() (tree.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return tree.Row{}, false
	}
	return m.rows[m.cursor], true
}

// Selected returns the path under the cursor, or nil.
func (m Model) Selected() tree.PathID {
	row, ok := m.selected()
	if !ok {
		return nil
	}
	return row.Node.Path
}

// Rows returns the rows currently on screen.
func (m Model) Rows() []tree.Row {
	return m.rows
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.opts.Render.Styles

	var b strings.Builder
	title := "flow-dep-graph"
	if m.source != "" {
		title += "  " + m.source
	}
	b.WriteString(st.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(Legend(m.opts.Render))
	b.WriteString("\n\n")

	switch {
	case m.showHelp:
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	case !m.session.Loaded():
		b.WriteString(st.Muted.Render("No graph loaded. Waiting for a JSON file..."))
	case !m.ready:
		b.WriteString("Loading...")
	default:
		b.WriteString(m.viewport.View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderFooter() string {
	st := m.opts.Render.Styles
	var status string
	switch {
	case m.statusErr:
		status = st.Error.Render(m.status)
	case m.status != "":
		status = st.Status.Render(m.status)
	}
	if p := m.Selected(); p != nil {
		sel := st.Muted.Render(p.Format(m.opts.Render.Separator))
		if status != "" {
			status += "  "
		}
		status += sel
	}
	return status + "\n" + m.help.ShortHelpView(m.keys.ShortHelp())
}
