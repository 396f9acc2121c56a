package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rmax-ai/graphdeck/pkg/dialog"
	"github.com/rmax-ai/graphdeck/pkg/menu"
	"github.com/rmax-ai/graphdeck/pkg/notify"
	"github.com/rmax-ai/graphdeck/pkg/widget"
)

const (
	popupFallbackWidth  = 60
	popupFallbackHeight = 12
)

func (m Model) View() string {
	if !m.ready {
		return fmt.Sprintf("\n%s Initializing...", m.spinner.View())
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.paneView(paneGraphs, m.graphsView()),
		m.paneView(paneNodes, m.nodesView()),
		m.paneView(paneWidgets, m.widgetsView()),
	)

	sections := []string{m.headerView(), panes}
	if m.menu != nil {
		sections = append(sections, m.menuView())
	}
	if popup := m.popupView(); popup != "" {
		sections = append(sections, popup)
	}
	if d, ok := m.sess.Dialogs.Top(); ok {
		sections = append(sections, m.dialogView(d))
	}
	sections = append(sections, m.toastsView(), m.footerView())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	title := "graphdeck"
	if m.loading {
		title = m.spinner.View() + " " + title
	}
	return headerStyle.Render(title)
}

func (m Model) paneView(p pane, body string) string {
	style := paneStyle
	if m.focus == p {
		style = focusedPaneStyle
	}
	if m.width > 0 {
		style = style.Width(max(m.width/3-2, 10))
	}
	return style.Render(body)
}

func (m Model) graphsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Graphs") + "\n\n")
	if len(m.graphs) == 0 {
		b.WriteString(subtleStyle.Render("No graphs loaded."))
		return b.String()
	}
	for i, g := range m.graphs {
		line := g.Name
		if g.UUID == m.graphID {
			line = "● " + line
		} else {
			line = "  " + line
		}
		b.WriteString(m.cursorLine(paneGraphs, i == m.graphCursor, line) + "\n")
	}
	return b.String()
}

func (m Model) nodesView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Nodes") + "\n\n")
	nodes, edges := m.sess.Flow.Snapshot()
	if len(nodes) == 0 {
		b.WriteString(subtleStyle.Render("Select a graph."))
		return b.String()
	}
	for i, n := range nodes {
		line := fmt.Sprintf("%s (%s)", n.Data.Name, n.Data.Addon)
		b.WriteString(m.cursorLine(paneNodes, i == m.nodeCursor, line) + "\n")
	}
	b.WriteString(subtleStyle.Render(fmt.Sprintf("\n%d connections", len(edges))))
	return b.String()
}

func (m Model) widgetsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Widgets") + "\n\n")
	ws := m.sess.Widgets.List()
	if len(ws) == 0 {
		b.WriteString(subtleStyle.Render("No open widgets."))
		return b.String()
	}
	for i, w := range ws {
		mark := "□"
		if w.DisplayType == widget.DisplayDock {
			mark = "▣"
		}
		line := fmt.Sprintf("%s %s", mark, w.Title)
		b.WriteString(m.cursorLine(paneWidgets, i == m.widgetCursor, line) + "\n")
	}
	return b.String()
}

func (m Model) cursorLine(p pane, selected bool, line string) string {
	if selected && m.focus == p {
		return selectedStyle.Render("> " + line)
	}
	return "  " + line
}

func (m Model) menuView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.menu.props.Node.Data.Name) + "\n")
	for i, row := range m.menu.rows() {
		indent := strings.Repeat("  ", row.Depth)
		switch it := row.Item.(type) {
		case menu.Separator:
			b.WriteString(indent + subtleStyle.Render("────────") + "\n")
		case menu.SubMenu:
			arrow := "▸"
			if m.menu.expanded[it.ID] {
				arrow = "▾"
			}
			b.WriteString(menuLine(i == m.menu.cursor, indent+it.Label+" "+arrow, false) + "\n")
		case menu.Button:
			b.WriteString(menuLine(i == m.menu.cursor, indent+it.Label, it.Disabled) + "\n")
		default:
			panic(fmt.Sprintf("tui: unknown menu item %T", it))
		}
	}
	return menuStyle.MarginLeft(m.menu.props.X).Render(strings.TrimRight(b.String(), "\n"))
}

func menuLine(selected bool, label string, disabled bool) string {
	switch {
	case disabled && selected:
		return disabledStyle.Render("> " + label)
	case disabled:
		return disabledStyle.Render("  " + label)
	case selected:
		return selectedStyle.Render("> " + label)
	default:
		return "  " + label
	}
}

// topPopup returns the most recently opened widget shown as a popup.
func (m Model) topPopup() (widget.Widget, bool) {
	ws := m.sess.Widgets.List()
	for i := len(ws) - 1; i >= 0; i-- {
		if ws[i].DisplayType == widget.DisplayPopup {
			return ws[i], true
		}
	}
	return widget.Widget{}, false
}

func (m Model) popupView() string {
	w, ok := m.topPopup()
	if !ok {
		return ""
	}
	width := w.Popup.Width.Resolve(max(m.width, 1), popupFallbackWidth)
	var actions []string
	if w.Actions != nil {
		for _, a := range w.Actions.Custom {
			actions = append(actions, "["+a.Label+"]")
		}
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(w.Title),
		m.viewport.View(),
		subtleStyle.Render(strings.Join(actions, " ")),
	)
	return popupStyle.Width(max(width-4, 10)).Render(body)
}

// syncViewport sizes the popup viewport and loads the popup body.
func (m *Model) syncViewport() {
	w, ok := m.topPopup()
	if !ok {
		m.viewport.SetContent("")
		return
	}
	m.viewport.Width = max(w.Popup.Width.Resolve(max(m.width, 1), popupFallbackWidth)-4, 10)
	m.viewport.Height = max(w.Popup.Height.Resolve(max(m.height, 1), popupFallbackHeight)-4, 3)
	m.viewport.SetContent(widgetBody(w))
}

func widgetBody(w widget.Widget) string {
	switch meta := w.Metadata.(type) {
	case widget.EditorData:
		return meta.URL
	case widget.GraphActionData:
		var lines []string
		lines = append(lines, "graph: "+meta.GraphID, "base dir: "+meta.BaseDir)
		if meta.Node != nil {
			lines = append(lines, "node: "+meta.Node.Data.Name)
		}
		if meta.SrcNode != nil {
			lines = append(lines, "from: "+meta.SrcNode.Data.Name)
		}
		if meta.DestNode != nil {
			lines = append(lines, "to: "+meta.DestNode.Data.Name)
		}
		return strings.Join(lines, "\n")
	case widget.TerminalData:
		return meta.URL
	case widget.LogViewerData:
		return "following " + meta.Node.Data.Name
	default:
		return ""
	}
}

func (m Model) dialogView(d dialog.Dialog) string {
	style := dialogStyle
	if d.Variant == dialog.VariantDestructive {
		style = destructiveDialogStyle
	}
	hint := fmt.Sprintf("[y] %s   [n] %s", m.sess.T("action.confirm"), m.sess.T("action.cancel"))
	if m.resolving == d.ID {
		hint = m.spinner.View()
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(d.Title),
		"",
		d.Content,
		"",
		subtleStyle.Render(hint),
	))
}

func (m Model) toastsView() string {
	if m.toaster == nil {
		return ""
	}
	var lines []string
	for _, t := range m.toaster.Active() {
		text := t.Message
		if t.Detail != "" {
			text += ": " + t.Detail
		}
		if t.Level == notify.LevelError {
			lines = append(lines, errorStyle.Render("✗ "+text))
		} else {
			lines = append(lines, okStyle.Render("✓ "+text))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) footerView() string {
	var status string
	if m.err != nil {
		status = errorStyle.Render(fmt.Sprintf("Offline: %v", m.err))
	} else {
		status = okStyle.Render(fmt.Sprintf("Online • %d graphs • %d widgets", len(m.graphs), m.sess.Widgets.Len()))
	}
	return subtleStyle.Render("\n"+status+"\n") + m.help.View(m.keys)
}
