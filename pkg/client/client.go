package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultEndpoint is where the designer backend listens by default.
const DefaultEndpoint = "http://127.0.0.1:49483"

const apiPrefix = "/api/designer/v1"

// Client talks to the designer backend.
type Client struct {
	endpoint string
	http     *http.Client
	backoff  Backoff
}

// NewClient creates a new designer client.
// endpoint defaults to DefaultEndpoint if empty.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		backoff: DefaultBackoff(),
	}
}

// WithBackoff replaces the retry policy used for idempotent reads.
func (c *Client) WithBackoff(b Backoff) *Client {
	c.backoff = b
	return c
}

// Ping checks that the designer is reachable and returns its version.
func (c *Client) Ping(ctx context.Context) (Version, error) {
	var v Version
	if err := c.do(ctx, http.MethodGet, "/version", nil, &v); err != nil {
		return Version{}, err
	}
	return v, nil
}

// ListGraphs returns every graph known to the designer.
// Transport errors and 5xx responses are retried.
func (c *Client) ListGraphs(ctx context.Context) ([]Graph, error) {
	var graphs []Graph
	err := c.backoff.retry(ctx, func() error {
		graphs = nil
		return c.do(ctx, http.MethodPost, "/graphs", struct{}{}, &graphs)
	})
	if err != nil {
		return nil, err
	}
	return graphs, nil
}

// GetGraphNodes returns the extension nodes of a graph.
func (c *Client) GetGraphNodes(ctx context.Context, graphID string) ([]GraphNode, error) {
	var nodes []GraphNode
	err := c.backoff.retry(ctx, func() error {
		nodes = nil
		return c.do(ctx, http.MethodPost, "/graphs/nodes", map[string]string{"graph_id": graphID}, &nodes)
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// GetGraphConnections returns the message flows of a graph.
func (c *Client) GetGraphConnections(ctx context.Context, graphID string) ([]GraphConnection, error) {
	var conns []GraphConnection
	err := c.backoff.retry(ctx, func() error {
		conns = nil
		return c.do(ctx, http.MethodPost, "/graphs/connections", map[string]string{"graph_id": graphID}, &conns)
	})
	if err != nil {
		return nil, err
	}
	return conns, nil
}

// DeleteNode removes a node from a graph. It is never retried.
func (c *Client) DeleteNode(ctx context.Context, req DeleteNodeRequest) error {
	if req.GraphID == "" || req.Name == "" {
		return fmt.Errorf("invalid delete request: missing graph_id or name")
	}
	return c.do(ctx, http.MethodPost, "/graphs/nodes/delete", req, nil)
}

// do sends one request and unwraps the designer envelope into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+apiPrefix+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("designer unreachable: %w", err)
	}
	defer resp.Body.Close()

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &APIError{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || env.Status == statusFail {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", path, err)
	}
	return nil
}
