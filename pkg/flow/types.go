package flow

// NodeData is the designer-facing payload of a canvas node.
type NodeData struct {
	Name           string `json:"name"`
	Addon          string `json:"addon"`
	ExtensionGroup string `json:"extension_group,omitempty"`
	App            string `json:"app,omitempty"`
	// URL is the extension's source directory; empty when unknown.
	URL string `json:"url,omitempty"`
}

// Position places a node on the canvas.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Node is a canvas node bound to one extension.
type Node struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// MsgType is the kind of message an edge carries.
type MsgType string

const (
	MsgCmd        MsgType = "cmd"
	MsgData       MsgType = "data"
	MsgAudioFrame MsgType = "audio_frame"
	MsgVideoFrame MsgType = "video_frame"
)

// EdgeData describes the message routed along an edge.
type EdgeData struct {
	MsgType MsgType `json:"msg_type"`
	MsgName string  `json:"msg_name"`
}

// Edge connects two nodes by id.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Data   EdgeData `json:"data"`
}
