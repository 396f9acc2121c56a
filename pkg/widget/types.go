package widget

import (
	"github.com/rmax-ai/graphdeck/pkg/flow"
	"github.com/rmax-ai/graphdeck/pkg/identity"
)

// Layout partitions.
const (
	ContainerDefault = "default"

	GroupEditor    = "editor"
	GroupGraph     = "graph"
	GroupTerminal  = "terminal"
	GroupLogViewer = "log-viewer"
)

// Category selects the metadata shape and default behaviors of a widget.
type Category string

const (
	CategoryEditor    Category = "editor"
	CategoryGraph     Category = "graph"
	CategoryTerminal  Category = "terminal"
	CategoryLogViewer Category = "log_viewer"
)

// DisplayType is the presentation mode.
type DisplayType string

const (
	DisplayPopup DisplayType = "popup"
	DisplayDock  DisplayType = "dock"
)

// PredefinedCheck runs before a widget may close.
type PredefinedCheck string

const (
	CheckEditorUnsavedChanges PredefinedCheck = "editor_unsaved_changes"
)

// Dimension is either unset, a fixed unit count, or a fraction of the viewport.
type Dimension struct {
	Units    int
	Fraction float64
}

// Fixed returns a dimension of n units.
func Fixed(n int) Dimension { return Dimension{Units: n} }

// Fraction returns a dimension of f times the viewport (0 < f <= 1).
func Fraction(f float64) Dimension { return Dimension{Fraction: f} }

// IsSet reports whether the dimension was specified.
func (d Dimension) IsSet() bool { return d.Units > 0 || d.Fraction > 0 }

// Resolve turns the dimension into a concrete size for a viewport.
// Unset dimensions resolve to fallback.
func (d Dimension) Resolve(viewport, fallback int) int {
	switch {
	case d.Units > 0:
		if d.Units > viewport {
			return viewport
		}
		return d.Units
	case d.Fraction > 0:
		return int(float64(viewport) * d.Fraction)
	default:
		return fallback
	}
}

// PopupGeometry sizes a popup widget.
type PopupGeometry struct {
	Width  Dimension
	Height Dimension
}

// CustomAction is an extra button on a widget frame.
type CustomAction struct {
	ID      string
	Label   string
	Icon    string
	OnClick func()
}

// Actions are the lifecycle hooks attached to a widget.
type Actions struct {
	Checks []PredefinedCheck
	Custom []CustomAction
}

// Metadata is the category-specific payload. It is a closed set; see the
// implementations below.
type Metadata interface {
	category() Category
}

// EditorData points an editor at a file.
type EditorData struct {
	Title   string
	Content string
	URL     string
}

func (EditorData) category() Category { return CategoryEditor }

// GraphActionData encodes a graph mutation intent.
type GraphActionData struct {
	Kind     identity.Kind
	BaseDir  string
	GraphID  string
	Node     *flow.Node
	SrcNode  *flow.Node
	DestNode *flow.Node
}

func (GraphActionData) category() Category { return CategoryGraph }

// TerminalData opens a shell at URL.
type TerminalData struct {
	Title string
	URL   string
}

func (TerminalData) category() Category { return CategoryTerminal }

// LogViewerData follows the logs of a node.
type LogViewerData struct {
	Node flow.Node
}

func (LogViewerData) category() Category { return CategoryLogViewer }

// Widget is an addressable UI surface.
type Widget struct {
	ID          string
	ContainerID string
	GroupID     string
	Category    Category
	DisplayType DisplayType
	Title       string
	Metadata    Metadata
	Popup       PopupGeometry
	Actions     *Actions
}

// MetadataMatches reports whether the payload fits the category.
func (w Widget) MetadataMatches() bool {
	return w.Metadata != nil && w.Metadata.category() == w.Category
}
