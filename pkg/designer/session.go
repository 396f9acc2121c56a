// Package designer owns the per-process designer state and the remote
// mutation protocols that act on it.
package designer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rmax-ai/graphdeck/pkg/client"
	"github.com/rmax-ai/graphdeck/pkg/dialog"
	"github.com/rmax-ai/graphdeck/pkg/flow"
	"github.com/rmax-ai/graphdeck/pkg/i18n"
	"github.com/rmax-ai/graphdeck/pkg/identity"
	"github.com/rmax-ai/graphdeck/pkg/notify"
	"github.com/rmax-ai/graphdeck/pkg/store"
	"github.com/rmax-ai/graphdeck/pkg/store/redis"
	"github.com/rmax-ai/graphdeck/pkg/widget"
)

// ErrGraphNotFound is returned when the graph being refreshed no longer exists.
var ErrGraphNotFound = errors.New("graph not found")

// GraphService is the remote designer backend.
type GraphService interface {
	DeleteNode(ctx context.Context, req client.DeleteNodeRequest) error
	ListGraphs(ctx context.Context) ([]client.Graph, error)
}

// Resolver re-derives canvas nodes and edges from a graph definition.
type Resolver interface {
	ResolveNodesAndEdges(ctx context.Context, graph client.Graph) ([]flow.Node, []flow.Edge, error)
}

// Translator looks up display strings.
type Translator interface {
	T(key string, subs ...i18n.Subs) string
}

// Journal records session events.
type Journal interface {
	AppendEvent(ctx context.Context, e store.Event) (store.EventID, error)
}

// Broadcaster announces graph changes to other sessions.
type Broadcaster interface {
	Publish(ctx context.Context, change redis.GraphChange) error
}

// Options wires a Session to its collaborators. Graphs, Resolver,
// Translator and Notifier are required; the rest are optional.
type Options struct {
	SessionID   string
	Graphs      GraphService
	Resolver    Resolver
	Translator  Translator
	Notifier    notify.Notifier
	Journal     Journal
	Broadcaster Broadcaster
	Logger      *slog.Logger
	IDs         *identity.Scheme
}

// Session is the shared designer state, created once at start and passed
// by reference to every consumer.
type Session struct {
	ID         string
	Widgets    *widget.Store
	Dialogs    *dialog.Store
	Flow       *flow.State
	IDs        *identity.Scheme
	EditorRefs *widget.EditorRefs

	graphs    GraphService
	resolver  Resolver
	tr        Translator
	notifier  notify.Notifier
	journal   Journal
	broadcast Broadcaster
	log       *slog.Logger
}

// NewSession creates a Session with empty stores.
func NewSession(opts Options) *Session {
	if opts.SessionID == "" {
		opts.SessionID = uuid.New().String()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.IDs == nil {
		opts.IDs = identity.NewScheme()
	}
	return &Session{
		ID:         opts.SessionID,
		Widgets:    widget.NewStore(),
		Dialogs:    dialog.NewStore(),
		Flow:       flow.NewState(),
		IDs:        opts.IDs,
		EditorRefs: widget.NewEditorRefs(),
		graphs:     opts.Graphs,
		resolver:   opts.Resolver,
		tr:         opts.Translator,
		notifier:   opts.Notifier,
		journal:    opts.Journal,
		broadcast:  opts.Broadcaster,
		log:        opts.Logger.With("session_id", opts.SessionID),
	}
}

// T translates a display string.
func (s *Session) T(key string, subs ...i18n.Subs) string {
	return s.tr.T(key, subs...)
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger {
	return s.log
}

// RecordAction counts a context menu click.
func (s *Session) RecordAction(item string) {
	MenuActionsTotal.WithLabelValues(item).Inc()
	s.log.Debug("Menu action", "item", item)
}

// OpenWidget appends w, replacing any widget with the same id.
func (s *Session) OpenWidget(w widget.Widget) {
	s.Widgets.Append(w)
	OpenWidgets.Set(float64(s.Widgets.Len()))

	e := store.Event{EventType: store.EventTypeWidgetOpened, SubjectID: w.ID}
	if meta, ok := w.Metadata.(widget.GraphActionData); ok {
		e.GraphID = meta.GraphID
		e.Payload = mustJSON(map[string]string{"kind": string(meta.Kind)})
	}
	s.record(context.Background(), e)
}

// CloseWidget removes a widget and releases any editor bound to it.
func (s *Session) CloseWidget(id string) {
	if _, ok := s.Widgets.Get(id); !ok {
		return
	}
	s.Widgets.Remove(id)
	s.EditorRefs.Unregister(id)
	OpenWidgets.Set(float64(s.Widgets.Len()))
	s.record(context.Background(), store.Event{EventType: store.EventTypeWidgetClosed, SubjectID: id})
}

// SaveEditor saves the editor mounted in widgetID, toasting on failure.
func (s *Session) SaveEditor(widgetID string) {
	if err := s.EditorRefs.Save(widgetID); err != nil {
		s.notifier.Error(s.T("action.saveFileFailed"), s.errorDetail(err))
		s.log.Error("Failed to save editor", "widget_id", widgetID, "error", err)
	}
}

// LaunchTerminal opens a terminal widget. It is the default terminal
// launcher handed to context menus.
func (s *Session) LaunchTerminal(data widget.TerminalData) {
	s.OpenWidget(widget.Widget{
		ID:          "terminal-" + data.URL + "-" + data.Title,
		ContainerID: widget.ContainerDefault,
		GroupID:     widget.GroupTerminal,
		Category:    widget.CategoryTerminal,
		DisplayType: widget.DisplayPopup,
		Title:       s.T("popup.terminal.title", i18n.Subs{"title": data.Title}),
		Metadata:    data,
		Popup:       widget.PopupGeometry{Width: widget.Fraction(0.5), Height: widget.Fraction(0.6)},
	})
}

// LaunchLogViewer opens a log viewer following node.
func (s *Session) LaunchLogViewer(node flow.Node) {
	s.OpenWidget(widget.Widget{
		ID:          "log-viewer-" + node.Data.Name,
		ContainerID: widget.ContainerDefault,
		GroupID:     widget.GroupLogViewer,
		Category:    widget.CategoryLogViewer,
		DisplayType: widget.DisplayPopup,
		Title:       s.T("popup.logViewer.title", i18n.Subs{"name": node.Data.Name}),
		Metadata:    widget.LogViewerData{Node: node},
		Popup:       widget.PopupGeometry{Width: widget.Fraction(0.5), Height: widget.Fraction(0.6)},
	})
}

// ListGraphs returns the graphs known to the designer.
func (s *Session) ListGraphs(ctx context.Context) ([]client.Graph, error) {
	return s.graphs.ListGraphs(ctx)
}

// RefreshGraph re-derives nodes and edges for graphID from the server and
// replaces the canvas contents.
func (s *Session) RefreshGraph(ctx context.Context, graphID string) error {
	graphs, err := s.graphs.ListGraphs(ctx)
	if err != nil {
		return err
	}

	var target *client.Graph
	for i := range graphs {
		if graphs[i].UUID == graphID {
			target = &graphs[i]
			break
		}
	}
	if target == nil {
		return ErrGraphNotFound
	}

	nodes, edges, err := s.resolver.ResolveNodesAndEdges(ctx, *target)
	if err != nil {
		return err
	}
	s.Flow.SetNodesAndEdges(nodes, edges)
	return nil
}

// errorDetail prefers the server's message, then falls back to a generic string.
func (s *Session) errorDetail(err error) string {
	if errors.Is(err, ErrGraphNotFound) {
		return s.T("error.graphNotFound")
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message == "" {
		return s.T("error.unknown")
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return s.T("error.unknown")
}

// record writes to the journal if one is configured. Failures are logged.
func (s *Session) record(ctx context.Context, e store.Event) {
	if s.journal == nil {
		return
	}
	e.SessionID = s.ID
	if _, err := s.journal.AppendEvent(ctx, e); err != nil {
		s.log.Warn("Failed to journal event", "event_type", e.EventType, "error", err)
	}
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
