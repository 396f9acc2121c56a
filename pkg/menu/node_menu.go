package menu

import (
	"github.com/rmax-ai/graphdeck/pkg/designer"
	"github.com/rmax-ai/graphdeck/pkg/flow"
	"github.com/rmax-ai/graphdeck/pkg/i18n"
	"github.com/rmax-ai/graphdeck/pkg/identity"
	"github.com/rmax-ai/graphdeck/pkg/widget"
)

// Item ids of the node context menu.
const (
	ItemEditExtension        = "edit-extension"
	ItemEditManifest         = "edit-manifest"
	ItemEditProperty         = "edit-property"
	ItemUpdateNodeProperties = "update-node-properties"
	ItemAddConnectionFrom    = "add-connection-from"
	ItemAddConnectionTo      = "add-connection-to"
	ItemLaunchTerminal       = "launch-terminal"
	ItemLaunchLogViewer      = "launch-log-viewer"
	ItemReplaceNode          = "replace-node"
	ItemDeleteNode           = "delete-node"
)

// graphActionWidth is the fixed popup width of graph action panels.
const graphActionWidth = 340

// Props place the menu and scope its graph-mutating actions. BaseDir and
// GraphID are empty when no graph is selected.
type Props struct {
	Visible bool
	X, Y    int
	Node    flow.Node
	BaseDir string
	GraphID string

	OnClose           func()
	OnLaunchTerminal  func(widget.TerminalData)
	OnLaunchLogViewer func(flow.Node)
}

func (p Props) hasScope() bool {
	return p.BaseDir != "" && p.GraphID != ""
}

func (p Props) close() {
	if p.OnClose != nil {
		p.OnClose()
	}
}

// BuildNodeMenu returns the context menu for a graph node.
func BuildNodeMenu(sess *designer.Session, p Props) []Item {
	node := p.Node
	name := node.Data.Name
	gated := !p.hasScope()

	// fn reports whether the action ran; gated clicks are not recorded
	click := func(id string, fn func() bool) func() {
		return func() {
			if fn() {
				sess.RecordAction(id)
			}
		}
	}

	editFile := func(file string) func() bool {
		return func() bool {
			p.close()
			if node.Data.URL == "" {
				return false
			}
			launchEditor(sess, widget.EditorData{
				Title: name + " " + file,
				URL:   node.Data.URL + "/" + file,
			})
			return true
		}
	}

	openGraphAction := func(id string, meta widget.GraphActionData, title string, popup widget.PopupGeometry) {
		meta.BaseDir = p.BaseDir
		meta.GraphID = p.GraphID
		sess.OpenWidget(widget.Widget{
			ID:          id,
			ContainerID: widget.ContainerDefault,
			GroupID:     widget.GroupGraph,
			Category:    widget.CategoryGraph,
			DisplayType: widget.DisplayPopup,
			Title:       title,
			Metadata:    meta,
			Popup:       popup,
		})
	}

	addConnection := func(from bool) func() bool {
		return func() bool {
			if !p.hasScope() {
				return false
			}
			meta := widget.GraphActionData{Kind: identity.KindAddConnection}
			if from {
				meta.SrcNode = &node
			} else {
				meta.DestNode = &node
			}
			// both directions share one slot; the later one wins
			openGraphAction(
				sess.IDs.MustDerive(identity.Dedupe, identity.KindAddConnection, name),
				meta,
				sess.T("popup.graph.addConnection"),
				widget.PopupGeometry{},
			)
			p.close()
			return true
		}
	}

	return []Item{
		SubMenu{
			ID:    ItemEditExtension,
			Label: sess.T("action.edit") + " " + sess.T("extensionStore.extension"),
			Icon:  "file-pen-line",
			Items: []Item{
				Button{
					ID:      ItemEditManifest,
					Label:   sess.T("action.edit") + " manifest.json",
					Icon:    "file-pen-line",
					OnClick: click(ItemEditManifest, editFile("manifest.json")),
				},
				Button{
					ID:      ItemEditProperty,
					Label:   sess.T("action.edit") + " property.json",
					Icon:    "file-pen-line",
					OnClick: click(ItemEditProperty, editFile("property.json")),
				},
			},
		},
		Separator{},
		Button{
			ID:       ItemUpdateNodeProperties,
			Label:    sess.T("action.update") + " " + sess.T("popup.node.properties"),
			Icon:     "table-properties",
			Disabled: gated,
			OnClick: click(ItemUpdateNodeProperties, func() bool {
				if !p.hasScope() {
					return false
				}
				openGraphAction(
					identity.UpdateNodePropertyWidgetID(name),
					widget.GraphActionData{Kind: identity.KindUpdateNodeProperty, Node: &node},
					sess.T("popup.graph.updateNodeProperty")+" "+name,
					widget.PopupGeometry{Width: widget.Fixed(graphActionWidth), Height: widget.Fraction(0.8)},
				)
				p.close()
				return true
			}),
		},
		Button{
			ID:       ItemAddConnectionFrom,
			Label:    sess.T("header.menuGraph.addConnectionFromNode", i18n.Subs{"node": name}),
			Icon:     "arrow-up-from-dot",
			Disabled: gated,
			OnClick:  click(ItemAddConnectionFrom, addConnection(true)),
		},
		Button{
			ID:       ItemAddConnectionTo,
			Label:    sess.T("header.menuGraph.addConnectionToNode", i18n.Subs{"node": name}),
			Icon:     "arrow-down-to-dot",
			Disabled: gated,
			OnClick:  click(ItemAddConnectionTo, addConnection(false)),
		},
		Separator{},
		Button{
			ID:    ItemLaunchTerminal,
			Label: sess.T("action.launchTerminal"),
			Icon:  "terminal",
			OnClick: click(ItemLaunchTerminal, func() bool {
				p.close()
				if p.OnLaunchTerminal == nil {
					return false
				}
				p.OnLaunchTerminal(widget.TerminalData{Title: name, URL: node.Data.URL})
				return true
			}),
		},
		Button{
			ID:       ItemLaunchLogViewer,
			Label:    sess.T("action.launchLogViewer"),
			Icon:     "logs",
			Disabled: p.OnLaunchLogViewer == nil,
			OnClick: click(ItemLaunchLogViewer, func() bool {
				p.close()
				if p.OnLaunchLogViewer == nil {
					return false
				}
				p.OnLaunchLogViewer(node)
				return true
			}),
		},
		Separator{},
		Button{
			ID:       ItemReplaceNode,
			Label:    sess.T("action.replaceNode"),
			Icon:     "replace",
			Disabled: gated,
			OnClick: click(ItemReplaceNode, func() bool {
				if !p.hasScope() {
					return false
				}
				// one replace panel per graph, whichever node opened it
				openGraphAction(
					sess.IDs.MustDerive(identity.Dedupe, identity.KindReplaceNode, p.BaseDir, p.GraphID),
					widget.GraphActionData{Kind: identity.KindReplaceNode, Node: &node},
					sess.T("popup.graph.replaceNode")+" "+name,
					widget.PopupGeometry{Width: widget.Fixed(graphActionWidth)},
				)
				p.close()
				return true
			}),
		},
		Button{
			ID:       ItemDeleteNode,
			Label:    sess.T("action.delete"),
			Icon:     "trash-2",
			Disabled: gated,
			OnClick: click(ItemDeleteNode, func() bool {
				p.close()
				if !p.hasScope() {
					return false
				}
				sess.RequestDeleteNode(node, p.BaseDir, p.GraphID)
				return true
			}),
		},
	}
}

// launchEditor opens a fresh editor widget for data.URL.
func launchEditor(sess *designer.Session, data widget.EditorData) string {
	id := sess.IDs.MustDerive(identity.Fresh, identity.KindEditor, data.URL)
	sess.OpenWidget(widget.Widget{
		ID:          id,
		ContainerID: widget.ContainerDefault,
		GroupID:     widget.GroupEditor,
		Category:    widget.CategoryEditor,
		DisplayType: widget.DisplayPopup,
		Title:       data.Title,
		Metadata:    data,
		Popup:       widget.PopupGeometry{Width: widget.Fraction(0.5), Height: widget.Fraction(0.8)},
		Actions: &widget.Actions{
			Checks: []widget.PredefinedCheck{widget.CheckEditorUnsavedChanges},
			Custom: []widget.CustomAction{{
				ID:      "save-file",
				Label:   sess.T("action.save"),
				Icon:    "save",
				OnClick: func() { sess.SaveEditor(id) },
			}},
		},
	})
	return id
}
