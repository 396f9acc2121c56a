package flow

import (
	"context"
	"fmt"

	"github.com/rmax-ai/graphdeck/pkg/client"
)

// GraphSource fetches the parts of a graph definition.
type GraphSource interface {
	GetGraphNodes(ctx context.Context, graphID string) ([]client.GraphNode, error)
	GetGraphConnections(ctx context.Context, graphID string) ([]client.GraphConnection, error)
}

// Resolver re-derives canvas nodes and edges from a graph definition.
type Resolver struct {
	source  GraphSource
	columns int
	spacing Position
}

// NewResolver creates a Resolver that places nodes on a simple grid.
func NewResolver(source GraphSource) *Resolver {
	return &Resolver{
		source:  source,
		columns: 4,
		spacing: Position{X: 320, Y: 160},
	}
}

// ResolveNodesAndEdges fetches graph and returns its full node and edge set.
func (r *Resolver) ResolveNodesAndEdges(ctx context.Context, graph client.Graph) ([]Node, []Edge, error) {
	gNodes, err := r.source.GetGraphNodes(ctx, graph.UUID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch nodes for graph %s: %w", graph.UUID, err)
	}
	conns, err := r.source.GetGraphConnections(ctx, graph.UUID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch connections for graph %s: %w", graph.UUID, err)
	}

	nodes := make([]Node, 0, len(gNodes))
	known := make(map[string]bool, len(gNodes))
	for i, gn := range gNodes {
		nodes = append(nodes, Node{
			ID: gn.Name,
			Position: Position{
				X: (i % r.columns) * r.spacing.X,
				Y: (i / r.columns) * r.spacing.Y,
			},
			Data: NodeData{
				Name:           gn.Name,
				Addon:          gn.Addon,
				ExtensionGroup: gn.ExtensionGroup,
				App:            gn.App,
				URL:            gn.URL,
			},
		})
		known[gn.Name] = true
	}

	var edges []Edge
	for _, conn := range conns {
		if !known[conn.Extension] {
			continue
		}
		edges = appendFlows(edges, known, conn.Extension, MsgCmd, conn.Cmd)
		edges = appendFlows(edges, known, conn.Extension, MsgData, conn.Data)
		edges = appendFlows(edges, known, conn.Extension, MsgAudioFrame, conn.AudioFrame)
		edges = appendFlows(edges, known, conn.Extension, MsgVideoFrame, conn.VideoFrame)
	}

	return nodes, edges, nil
}

// appendFlows adds one edge per (source, type, name, destination).
// Destinations outside the graph are dropped.
func appendFlows(edges []Edge, known map[string]bool, src string, typ MsgType, flows []client.MessageFlow) []Edge {
	for _, f := range flows {
		for _, d := range f.Dest {
			if !known[d.Extension] {
				continue
			}
			edges = append(edges, Edge{
				ID:     fmt.Sprintf("%s-%s-%s-%s", src, typ, f.Name, d.Extension),
				Source: src,
				Target: d.Extension,
				Data:   EdgeData{MsgType: typ, MsgName: f.Name},
			})
		}
	}
	return edges
}
