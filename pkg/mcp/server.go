// Package mcp exposes the node context menu and the delete-node protocol
// to agents over the Model Context Protocol.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rmax-ai/graphdeck/pkg/designer"
	"github.com/rmax-ai/graphdeck/pkg/notify"
	"github.com/rmax-ai/graphdeck/pkg/store"
)

// journalLimit caps the events returned by the journal resource.
const journalLimit = 50

// EventReader reads the session journal.
type EventReader interface {
	ReadEvents(ctx context.Context, f store.EventFilter) ([]store.Event, error)
}

// Options configure the server. Session is required.
type Options struct {
	Session *designer.Session
	// Toaster collects toasts raised while a tool runs; they are returned
	// with the tool result.
	Toaster *notify.Toaster
	Journal EventReader
	// BaseDir overrides the base directory reported by the graph.
	BaseDir string
	Version string
}

// Server adapts a designer session to the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	sess      *designer.Session
	toaster   *notify.Toaster
	journal   EventReader
	baseDir   string
}

// NewServer creates a new MCP server instance.
func NewServer(opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{
		mcpServer: server.NewMCPServer("graphdeck", opts.Version),
		sess:      opts.Session,
		toaster:   opts.Toaster,
		journal:   opts.Journal,
		baseDir:   opts.BaseDir,
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		"graphdeck://widgets",
		"Open Widgets",
		mcp.WithResourceDescription("Widgets currently open in the designer session"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadWidgets)

	s.mcpServer.AddResource(mcp.NewResource(
		"graphdeck://dialogs",
		"Open Dialogs",
		mcp.WithResourceDescription("Confirmation dialogs waiting for an answer"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadDialogs)

	if s.journal != nil {
		s.mcpServer.AddResource(mcp.NewResource(
			"graphdeck://journal",
			"Session Journal",
			mcp.WithResourceDescription("Recent widget, dialog and node events"),
			mcp.WithMIMEType("application/json"),
		), s.handleReadJournal)
	}
}

// --- Tools ---

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"list_graphs",
		mcp.WithDescription("List the graphs known to the designer backend."),
	), s.handleListGraphs)

	s.mcpServer.AddTool(mcp.NewTool(
		"node_menu",
		mcp.WithDescription("Load a graph and return the context menu of one of its nodes."),
		mcp.WithString("graph_id", mcp.Required(), mcp.Description("The graph containing the node")),
		mcp.WithString("node", mcp.Required(), mcp.Description("The node name")),
		mcp.WithString("base_dir", mcp.Description("Base directory of the app (defaults to the graph's)")),
	), s.handleNodeMenu)

	s.mcpServer.AddTool(mcp.NewTool(
		"invoke_menu_item",
		mcp.WithDescription("Click a context menu item of a node. Deleting a node opens a dialog that must be resolved with resolve_dialog."),
		mcp.WithString("graph_id", mcp.Required(), mcp.Description("The graph containing the node")),
		mcp.WithString("node", mcp.Required(), mcp.Description("The node name")),
		mcp.WithString("item", mcp.Required(), mcp.Description("The menu item id (e.g., 'delete-node')")),
		mcp.WithString("base_dir", mcp.Description("Base directory of the app (defaults to the graph's)")),
	), s.handleInvokeMenuItem)

	s.mcpServer.AddTool(mcp.NewTool(
		"list_widgets",
		mcp.WithDescription("List the widgets open in the designer session."),
	), s.handleListWidgets)

	s.mcpServer.AddTool(mcp.NewTool(
		"resolve_dialog",
		mcp.WithDescription("Confirm or cancel an open dialog."),
		mcp.WithString("dialog_id", mcp.Required(), mcp.Description("The dialog id")),
		mcp.WithBoolean("confirm", mcp.Description("Confirm when true, cancel otherwise (default false)")),
	), s.handleResolveDialog)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"graphdeck-aware",
		mcp.WithPromptDescription("Explains graphs, nodes, widgets and confirmation dialogs"),
	), s.handleGetPrompt)
}
