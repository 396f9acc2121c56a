package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rmax-ai/graphdeck/pkg/menu"
)

// buildMenu loads the requested graph into the session canvas and builds
// the context menu of the requested node. The returned flag reports
// whether a handler asked the menu to close.
func (s *Server) buildMenu(ctx context.Context, request mcp.CallToolRequest) ([]menu.Item, *bool, error) {
	graphID := mcp.ParseString(request, "graph_id", "")
	name := mcp.ParseString(request, "node", "")
	baseDir := mcp.ParseString(request, "base_dir", s.baseDir)

	if err := s.sess.RefreshGraph(ctx, graphID); err != nil {
		return nil, nil, fmt.Errorf("failed to load graph %s: %w", graphID, err)
	}
	node, ok := s.sess.Flow.Node(name)
	if !ok {
		return nil, nil, fmt.Errorf("node not found: %s", name)
	}

	if baseDir == "" {
		graphs, err := s.sess.ListGraphs(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list graphs: %w", err)
		}
		for _, g := range graphs {
			if g.UUID == graphID {
				baseDir = g.BaseDir
			}
		}
	}

	closed := new(bool)
	items := menu.BuildNodeMenu(s.sess, menu.Props{
		Visible:           true,
		Node:              node,
		BaseDir:           baseDir,
		GraphID:           graphID,
		OnClose:           func() { *closed = true },
		OnLaunchTerminal:  s.sess.LaunchTerminal,
		OnLaunchLogViewer: s.sess.LaunchLogViewer,
	})
	return items, closed, nil
}
