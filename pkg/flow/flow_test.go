package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/rmax-ai/graphdeck/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	nodes   []client.GraphNode
	conns   []client.GraphConnection
	nodeErr error
}

func (f *fakeSource) GetGraphNodes(ctx context.Context, graphID string) ([]client.GraphNode, error) {
	return f.nodes, f.nodeErr
}

func (f *fakeSource) GetGraphConnections(ctx context.Context, graphID string) ([]client.GraphConnection, error) {
	return f.conns, nil
}

func TestResolveNodesAndEdges(t *testing.T) {
	src := &fakeSource{
		nodes: []client.GraphNode{
			{Name: "a", Addon: "addon_a", URL: "/p/ext/a"},
			{Name: "b", Addon: "addon_b", ExtensionGroup: "g"},
		},
		conns: []client.GraphConnection{
			{
				Extension: "a",
				Cmd:       []client.MessageFlow{{Name: "hello", Dest: []client.Destination{{Extension: "b"}, {Extension: "gone"}}}},
				Data:      []client.MessageFlow{{Name: "text", Dest: []client.Destination{{Extension: "b"}}}},
			},
			{Extension: "missing", Cmd: []client.MessageFlow{{Name: "x", Dest: []client.Destination{{Extension: "a"}}}}},
		},
	}

	nodes, edges, err := NewResolver(src).ResolveNodesAndEdges(context.Background(), client.Graph{UUID: "g1"})
	require.NoError(t, err)

	require.Len(t, nodes, 2)
	assert.Equal(t, "a", nodes[0].ID)
	assert.Equal(t, "/p/ext/a", nodes[0].Data.URL)
	assert.Equal(t, Position{X: 320, Y: 0}, nodes[1].Position)

	require.Len(t, edges, 2)
	assert.Equal(t, "a-cmd-hello-b", edges[0].ID)
	assert.Equal(t, EdgeData{MsgType: MsgData, MsgName: "text"}, edges[1].Data)
}

func TestResolveNodesAndEdges_SourceError(t *testing.T) {
	src := &fakeSource{nodeErr: errors.New("offline")}

	_, _, err := NewResolver(src).ResolveNodesAndEdges(context.Background(), client.Graph{UUID: "g1"})
	assert.ErrorContains(t, err, "offline")
}

func TestState_ReplacesWholeValue(t *testing.T) {
	s := NewState()
	nodes := []Node{{ID: "a", Data: NodeData{Name: "a"}}}
	s.SetNodesAndEdges(nodes, nil)

	nodes[0].ID = "mutated"
	got, edges := s.Snapshot()
	assert.Equal(t, "a", got[0].ID)
	assert.Empty(t, edges)
	assert.Equal(t, uint64(1), s.Version())

	_, ok := s.Node("a")
	assert.True(t, ok)

	s.SetNodesAndEdges(nil, nil)
	got, _ = s.Snapshot()
	assert.Empty(t, got)
	assert.Equal(t, uint64(2), s.Version())
}
