package client

import (
	"encoding/json"
	"fmt"
)

// Envelope is the designer API response wrapper.
type Envelope struct {
	// Status is "ok" or "fail".
	Status string `json:"status"`
	// Data carries the payload when Status is "ok".
	Data json.RawMessage `json:"data,omitempty"`
	// Message explains a failure.
	Message string `json:"message,omitempty"`
}

const (
	statusOK   = "ok"
	statusFail = "fail"
)

// APIError is returned when the designer rejects a request.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("designer api: status %d", e.StatusCode)
	}
	return e.Message
}

// Graph is a graph definition known to the designer.
type Graph struct {
	// UUID identifies the graph.
	UUID string `json:"uuid"`
	// Name is the display name.
	Name string `json:"name,omitempty"`
	// AutoStart marks graphs started with the app.
	AutoStart bool `json:"auto_start,omitempty"`
	// BaseDir is the app directory the graph belongs to.
	BaseDir string `json:"base_dir,omitempty"`
}

// GraphNode is an extension node inside a graph.
type GraphNode struct {
	Name           string         `json:"name"`
	Addon          string         `json:"addon"`
	ExtensionGroup string         `json:"extension_group,omitempty"`
	App            string         `json:"app,omitempty"`
	URL            string         `json:"url,omitempty"`
	Property       map[string]any `json:"property,omitempty"`
}

// Destination is one receiver of a message flow.
type Destination struct {
	App       string `json:"app,omitempty"`
	Extension string `json:"extension"`
}

// MessageFlow routes one named message to its destinations.
type MessageFlow struct {
	Name string        `json:"name"`
	Dest []Destination `json:"dest"`
}

// GraphConnection lists the outgoing flows of a single extension.
type GraphConnection struct {
	App        string        `json:"app,omitempty"`
	Extension  string        `json:"extension"`
	Cmd        []MessageFlow `json:"cmd,omitempty"`
	Data       []MessageFlow `json:"data,omitempty"`
	AudioFrame []MessageFlow `json:"audio_frame,omitempty"`
	VideoFrame []MessageFlow `json:"video_frame,omitempty"`
}

// DeleteNodeRequest identifies the node to remove.
type DeleteNodeRequest struct {
	GraphID        string `json:"graph_id"`
	Name           string `json:"name"`
	Addon          string `json:"addon"`
	ExtensionGroup string `json:"extension_group,omitempty"`
}

// Version is the designer health response.
type Version struct {
	Version string `json:"version"`
}
