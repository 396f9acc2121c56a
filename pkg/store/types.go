package store

import (
	"encoding/json"
	"time"
)

// EventType represents the kind of journal event.
type EventType string

const (
	EventTypeWidgetOpened     EventType = "widget_opened"
	EventTypeWidgetClosed     EventType = "widget_closed"
	EventTypeDialogOpened     EventType = "dialog_opened"
	EventTypeDialogResolved   EventType = "dialog_resolved"
	EventTypeNodeDeleted      EventType = "node_deleted"
	EventTypeNodeDeleteFailed EventType = "node_delete_failed"
	EventTypeGraphRefreshed   EventType = "graph_refreshed"
)

// EventID is a unique identifier for an event.
type EventID string

// Event is one entry in the session journal.
type Event struct {
	EventID   EventID         `json:"event_id"`
	EventType EventType       `json:"event_type"`
	TsEvent   time.Time       `json:"ts_event"`
	SessionID string          `json:"session_id"`
	GraphID   string          `json:"graph_id,omitempty"`
	NodeName  string          `json:"node_name,omitempty"`
	SubjectID string          `json:"subject_id,omitempty"` // widget or dialog id
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// EventFilter narrows a journal query.
type EventFilter struct {
	EventTypes []EventType
	GraphID    string
	Limit      int
}
