package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rmax-ai/graphdeck/pkg/dialog"
	"github.com/rmax-ai/graphdeck/pkg/menu"
	"github.com/rmax-ai/graphdeck/pkg/notify"
	"github.com/rmax-ai/graphdeck/pkg/store"
)

type menuRow struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Label    string `json:"label,omitempty"`
	Depth    int    `json:"depth"`
	Disabled bool   `json:"disabled,omitempty"`
}

type widgetView struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	Category    string `json:"category"`
	DisplayType string `json:"display_type"`
	Title       string `json:"title"`
}

type dialogView struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Variant string `json:"variant"`
}

func (s *Server) handleReadWidgets(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(request.Params.URI, s.widgets())
}

func (s *Server) handleReadDialogs(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(request.Params.URI, s.dialogs())
}

func (s *Server) handleReadJournal(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	events, err := s.journal.ReadEvents(ctx, store.EventFilter{Limit: journalLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return jsonResource(request.Params.URI, events)
}

func (s *Server) handleListGraphs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	graphs, err := s.sess.ListGraphs(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	return jsonResult(graphs)
}

func (s *Server) handleNodeMenu(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, _, err := s.buildMenu(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var rows []menuRow
	menu.Walk(items, func(depth int, it menu.Item) {
		switch v := it.(type) {
		case menu.Button:
			rows = append(rows, menuRow{ID: v.ID, Kind: "button", Label: v.Label, Depth: depth, Disabled: v.Disabled})
		case menu.SubMenu:
			rows = append(rows, menuRow{ID: v.ID, Kind: "submenu", Label: v.Label, Depth: depth})
		case menu.Separator:
			rows = append(rows, menuRow{Kind: "separator", Depth: depth})
		default:
			panic(fmt.Sprintf("mcp: unhandled menu item %T", it))
		}
	})
	return jsonResult(rows)
}

func (s *Server) handleInvokeMenuItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	item := mcp.ParseString(request, "item", "")

	items, closed, err := s.buildMenu(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start := time.Now()
	if err := menu.Invoke(items, item); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Invoked %s", item)
	if *closed {
		b.WriteString(" (menu closed)")
	}
	b.WriteString("\n")
	if d, ok := s.sess.Dialogs.Top(); ok {
		fmt.Fprintf(&b, "Open dialog: %s\n%s\n", d.ID, d.Content)
	}
	fmt.Fprintf(&b, "Open widgets: %d\n", s.sess.Widgets.Len())
	b.WriteString(s.toastsSince(start))
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) handleListWidgets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.widgets())
}

func (s *Server) handleResolveDialog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := mcp.ParseString(request, "dialog_id", "")
	confirm := mcp.ParseBoolean(request, "confirm", false)

	start := time.Now()
	var err error
	if confirm {
		err = s.sess.Dialogs.Confirm(ctx, id)
	} else {
		err = s.sess.Dialogs.Cancel(ctx, id)
	}
	switch {
	case errors.Is(err, dialog.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("dialog not found: %s", id)), nil
	case errors.Is(err, dialog.ErrAlreadyResolved):
		return mcp.NewToolResultError(fmt.Sprintf("dialog already resolved: %s", id)), nil
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}

	outcome := "Cancelled"
	if confirm {
		outcome = "Confirmed"
	}
	msg := fmt.Sprintf("%s %s\n%s", outcome, id, s.toastsSince(start))
	return mcp.NewToolResultText(strings.TrimRight(msg, "\n")), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "graphdeck-aware" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are operating a graph designer session through graphdeck.

Concepts:
- Graph: a running app graph identified by a graph id, rooted at a base directory.
- Node: an extension instance in a graph, identified by its name.
- Context menu: the actions available on a node (edit files, add connections, replace, delete).
- Widget: a panel opened by a menu action. Opening the same action twice reuses the panel.
- Dialog: a confirmation that must be answered before a destructive action runs.

Use 'node_menu' to see which actions are enabled, then 'invoke_menu_item'.
Deleting a node opens a dialog; ask the user before calling 'resolve_dialog' with confirm=true.
`

	return mcp.NewGetPromptResult(
		"graphdeck-aware",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}

func (s *Server) widgets() []widgetView {
	ws := s.sess.Widgets.List()
	out := make([]widgetView, 0, len(ws))
	for _, w := range ws {
		out = append(out, widgetView{
			ID:          w.ID,
			GroupID:     w.GroupID,
			Category:    string(w.Category),
			DisplayType: string(w.DisplayType),
			Title:       w.Title,
		})
	}
	return out
}

func (s *Server) dialogs() []dialogView {
	ds := s.sess.Dialogs.List()
	out := make([]dialogView, 0, len(ds))
	for _, d := range ds {
		out = append(out, dialogView{ID: d.ID, Title: d.Title, Content: d.Content, Variant: string(d.Variant)})
	}
	return out
}

// toastsSince renders the toasts raised at or after start.
func (s *Server) toastsSince(start time.Time) string {
	if s.toaster == nil {
		return ""
	}
	var b strings.Builder
	for _, t := range s.toaster.Active() {
		if t.At.Before(start) {
			continue
		}
		level := "OK"
		if t.Level == notify.LevelError {
			level = "ERROR"
		}
		fmt.Fprintf(&b, "%s: %s", level, t.Message)
		if t.Detail != "" {
			fmt.Fprintf(&b, " (%s)", t.Detail)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
