// Package tui is the terminal front end: graph and node lists, the node
// context menu, the widget tray, dialogs and toasts.
package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rmax-ai/graphdeck/pkg/client"
	"github.com/rmax-ai/graphdeck/pkg/designer"
	"github.com/rmax-ai/graphdeck/pkg/dialog"
	"github.com/rmax-ai/graphdeck/pkg/flow"
	"github.com/rmax-ai/graphdeck/pkg/menu"
	"github.com/rmax-ai/graphdeck/pkg/notify"
	"github.com/rmax-ai/graphdeck/pkg/store/redis"
	"github.com/rmax-ai/graphdeck/pkg/widget"
)

type pane int

const (
	paneGraphs pane = iota
	paneNodes
	paneWidgets
)

// menuState is heap allocated so OnClose can reach it from a handler.
type menuState struct {
	props    menu.Props
	items    []menu.Item
	expanded map[string]bool
	cursor   int
	closed   bool
}

func (ms *menuState) rows() []menu.Row {
	return menu.Flatten(ms.items, func(s menu.SubMenu) bool { return ms.expanded[s.ID] })
}

// Options configure the model.
type Options struct {
	Session *designer.Session
	Toaster *notify.Toaster
	// BaseDir overrides the base directory reported by the selected graph.
	BaseDir string
	// Changes delivers graph changes from other sessions; may be nil.
	Changes <-chan redis.GraphChange
}

// Model is the bubbletea model.
type Model struct {
	sess    *designer.Session
	toaster *notify.Toaster
	baseDir string
	changes <-chan redis.GraphChange

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model

	width, height int
	focus         pane

	graphs       []client.Graph
	graphCursor  int
	graphID      string
	nodeCursor   int
	widgetCursor int

	menu      *menuState
	resolving string
	loading   bool
	err       error
	ready     bool
}

// New creates the model.
func New(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		sess:     opts.Session,
		toaster:  opts.Toaster,
		baseDir:  opts.BaseDir,
		changes:  opts.Changes,
		keys:     defaultKeys(),
		help:     help.New(),
		spinner:  s,
		viewport: viewport.New(60, 10),
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchGraphs(m.sess),
		waitForChange(m.changes),
		tick(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tickMsg:
		cmds = append(cmds, tick())

	case graphsMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.graphs = msg.graphs
			if m.graphCursor >= len(m.graphs) {
				m.graphCursor = max(len(m.graphs)-1, 0)
			}
		}

	case refreshedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.sess.Logger().Error("Failed to load graph", "graph_id", msg.graphID, "error", msg.err)
		} else {
			m.err = nil
			m.clampNodeCursor()
		}

	case dialogResolvedMsg:
		if m.resolving == msg.id {
			m.resolving = ""
		}
		if msg.err != nil && !errors.Is(msg.err, dialog.ErrAlreadyResolved) {
			m.sess.Logger().Warn("Dialog resolution failed", "dialog_id", msg.id, "error", msg.err)
		}
		m.clampNodeCursor()

	case graphChangedMsg:
		cmds = append(cmds, waitForChange(m.changes))
		if msg.SessionID != m.sess.ID && msg.GraphID == m.graphID {
			m.loading = true
			cmds = append(cmds, refreshGraph(m.sess, m.graphID))
		}
	}

	m.syncViewport()
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// a dialog is modal; it swallows every key until resolved
	if d, ok := m.sess.Dialogs.Top(); ok {
		if m.resolving != "" {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.resolving = d.ID
			return m, resolveDialog(m.sess, d.ID, true)
		case key.Matches(msg, m.keys.Cancel):
			m.resolving = d.ID
			return m, resolveDialog(m.sess, d.ID, false)
		}
		return m, nil
	}

	if m.menu != nil {
		return m.handleMenuKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Focus):
		m.focus = (m.focus + 1) % 3
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		if m.graphID != "" {
			return m, tea.Batch(fetchGraphs(m.sess), refreshGraph(m.sess, m.graphID))
		}
		return m, fetchGraphs(m.sess)
	case key.Matches(msg, m.keys.Select):
		return m.handleSelect()
	case key.Matches(msg, m.keys.Menu):
		if m.focus == paneNodes {
			m.openMenu()
		}
	case key.Matches(msg, m.keys.Close):
		if w, ok := m.selectedWidget(); ok {
			m.sess.CloseWidget(w.ID)
			m.widgetCursor = clamp(m.widgetCursor, m.sess.Widgets.Len())
		}
	case key.Matches(msg, m.keys.Pin):
		if w, ok := m.selectedWidget(); ok {
			next := widget.DisplayDock
			if w.DisplayType == widget.DisplayDock {
				next = widget.DisplayPopup
			}
			m.sess.Widgets.UpdateDisplayType(w.ID, next)
		}
	case key.Matches(msg, m.keys.Action):
		if w, ok := m.selectedWidget(); ok && w.Actions != nil && len(w.Actions.Custom) > 0 {
			if fn := w.Actions.Custom[0].OnClick; fn != nil {
				fn()
			}
		}
	}

	m.syncViewport()
	return m, nil
}

func (m Model) handleSelect() (tea.Model, tea.Cmd) {
	switch m.focus {
	case paneGraphs:
		if len(m.graphs) == 0 {
			return m, nil
		}
		m.graphID = m.graphs[m.graphCursor].UUID
		m.nodeCursor = 0
		m.loading = true
		m.focus = paneNodes
		return m, refreshGraph(m.sess, m.graphID)
	case paneNodes:
		m.openMenu()
	}
	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ms := m.menu
	rows := ms.rows()

	switch {
	case key.Matches(msg, m.keys.Back):
		m.menu = nil
	case key.Matches(msg, m.keys.Up):
		ms.cursor = nextSelectable(rows, ms.cursor, -1)
	case key.Matches(msg, m.keys.Down):
		ms.cursor = nextSelectable(rows, ms.cursor, 1)
	case key.Matches(msg, m.keys.Select):
		if ms.cursor >= len(rows) {
			break
		}
		switch it := rows[ms.cursor].Item.(type) {
		case menu.SubMenu:
			ms.expanded[it.ID] = !ms.expanded[it.ID]
		case menu.Button:
			if err := menu.Invoke(ms.items, it.ID); err != nil {
				m.sess.Logger().Debug("Menu item not invoked", "item", it.ID, "error", err)
			}
			if ms.closed {
				m.menu = nil
			}
		case menu.Separator:
		}
	}

	m.syncViewport()
	return m, nil
}

// openMenu builds the context menu for the node under the cursor.
func (m *Model) openMenu() {
	node, ok := m.selectedNode()
	if !ok {
		return
	}

	ms := &menuState{expanded: make(map[string]bool)}
	ms.props = menu.Props{
		Visible:           true,
		X:                 2,
		Y:                 m.nodeCursor + 1,
		Node:              node,
		BaseDir:           m.scopeBaseDir(),
		GraphID:           m.graphID,
		OnClose:           func() { ms.closed = true },
		OnLaunchTerminal:  m.sess.LaunchTerminal,
		OnLaunchLogViewer: m.sess.LaunchLogViewer,
	}
	ms.items = menu.BuildNodeMenu(m.sess, ms.props)
	m.menu = ms
}

// scopeBaseDir prefers the configured base dir over the graph's own.
func (m Model) scopeBaseDir() string {
	if m.baseDir != "" {
		return m.baseDir
	}
	for _, g := range m.graphs {
		if g.UUID == m.graphID {
			return g.BaseDir
		}
	}
	return ""
}

func (m Model) selectedNode() (flow.Node, bool) {
	nodes, _ := m.sess.Flow.Snapshot()
	if m.nodeCursor < 0 || m.nodeCursor >= len(nodes) {
		return flow.Node{}, false
	}
	return nodes[m.nodeCursor], true
}

func (m Model) selectedWidget() (widget.Widget, bool) {
	if m.focus != paneWidgets {
		return widget.Widget{}, false
	}
	ws := m.sess.Widgets.List()
	if m.widgetCursor < 0 || m.widgetCursor >= len(ws) {
		return widget.Widget{}, false
	}
	return ws[m.widgetCursor], true
}

func (m *Model) moveCursor(delta int) {
	switch m.focus {
	case paneGraphs:
		m.graphCursor = clamp(m.graphCursor+delta, len(m.graphs))
	case paneNodes:
		nodes, _ := m.sess.Flow.Snapshot()
		m.nodeCursor = clamp(m.nodeCursor+delta, len(nodes))
	case paneWidgets:
		m.widgetCursor = clamp(m.widgetCursor+delta, m.sess.Widgets.Len())
	}
}

func (m *Model) clampNodeCursor() {
	nodes, _ := m.sess.Flow.Snapshot()
	m.nodeCursor = clamp(m.nodeCursor, len(nodes))
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// nextSelectable moves from cursor by delta, skipping separators.
func nextSelectable(rows []menu.Row, cursor, delta int) int {
	for i := cursor + delta; i >= 0 && i < len(rows); i += delta {
		if _, sep := rows[i].Item.(menu.Separator); !sep {
			return i
		}
	}
	return cursor
}
