package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "graphdeck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesJournal(t *testing.T) {
	s := newTestStore(t)

	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='journal'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "journal", name)
}

func TestNewStore_Errors(t *testing.T) {
	garbage := filepath.Join(t.TempDir(), "garbage.db")
	require.NoError(t, os.WriteFile(garbage, []byte("this is not a sqlite database, only some text padding it out"), 0o644))

	tests := []struct {
		name        string
		path        string
		errorSubstr string
	}{
		{"missing directory", filepath.Join(t.TempDir(), "missing", "graphdeck.db"), "failed to ping sqlite db"},
		{"not a database", garbage, "not a database"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(tt.path)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.Contains(t, err.Error(), tt.errorSubstr)
		})
	}
}

func TestAppendAndRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	id, err := s.AppendEvent(ctx, Event{
		EventType: EventTypeDialogOpened,
		TsEvent:   base,
		SessionID: "s1",
		GraphID:   "g1",
		NodeName:  "N1",
		SubjectID: "delete-node-dialog-N1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = s.AppendEvent(ctx, Event{
		EventType: EventTypeNodeDeleted,
		TsEvent:   base.Add(time.Second),
		SessionID: "s1",
		GraphID:   "g1",
		NodeName:  "N1",
		Payload:   json.RawMessage(`{"addon":"a"}`),
	})
	require.NoError(t, err)

	_, err = s.AppendEvent(ctx, Event{EventType: EventTypeWidgetOpened, SessionID: "s1", GraphID: "g2"})
	require.NoError(t, err)

	events, err := s.ReadEvents(ctx, EventFilter{GraphID: "g1"})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeNodeDeleted, events[0].EventType)
	assert.JSONEq(t, `{"addon":"a"}`, string(events[0].Payload))
	assert.Empty(t, events[1].Payload)
	assert.Equal(t, id, events[1].EventID)

	events, err = s.ReadEvents(ctx, EventFilter{EventTypes: []EventType{EventTypeWidgetOpened}, Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "g2", events[0].GraphID)

	events, err = s.ReadEvents(ctx, EventFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestAppendEvent_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AppendEvent(ctx, Event{EventID: "same", EventType: EventTypeWidgetOpened, SessionID: "s"})
	require.NoError(t, err)
	_, err = s.AppendEvent(ctx, Event{EventID: "same", EventType: EventTypeWidgetOpened, SessionID: "s"})
	assert.Error(t, err)
}
