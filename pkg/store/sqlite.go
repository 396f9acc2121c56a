package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite-backed session journal.
type Store struct {
	db *sql.DB
}

// NewStore initializes the SQLite database connection.
// It enables WAL mode so the TUI and an MCP process can share the file.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS journal (
		event_id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		ts_event DATETIME NOT NULL,
		session_id TEXT NOT NULL,
		graph_id TEXT NOT NULL DEFAULT '',
		node_name TEXT NOT NULL DEFAULT '',
		subject_id TEXT NOT NULL DEFAULT '',
		payload JSON
	);

	CREATE INDEX IF NOT EXISTS idx_journal_ts ON journal(ts_event);
	CREATE INDEX IF NOT EXISTS idx_journal_graph ON journal(graph_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create journal table: %w", err)
	}
	return nil
}

// AppendEvent writes an event, assigning an id and timestamp when missing.
func (s *Store) AppendEvent(ctx context.Context, e Event) (EventID, error) {
	if e.EventID == "" {
		e.EventID = EventID(uuid.New().String())
	}
	if e.TsEvent.IsZero() {
		e.TsEvent = time.Now().UTC()
	}

	var payload any
	if len(e.Payload) > 0 {
		payload = string(e.Payload)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal (event_id, event_type, ts_event, session_id, graph_id, node_name, subject_id, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.EventID), string(e.EventType), e.TsEvent.UTC(), e.SessionID,
		e.GraphID, e.NodeName, e.SubjectID, payload,
	)
	if err != nil {
		return "", fmt.Errorf("failed to append event %s: %w", e.EventType, err)
	}
	return e.EventID, nil
}

// ReadEvents returns matching events, newest first.
func (s *Store) ReadEvents(ctx context.Context, f EventFilter) ([]Event, error) {
	var (
		where []string
		args  []any
	)
	if len(f.EventTypes) > 0 {
		marks := make([]string, len(f.EventTypes))
		for i, t := range f.EventTypes {
			marks[i] = "?"
			args = append(args, string(t))
		}
		where = append(where, "event_type IN ("+strings.Join(marks, ",")+")")
	}
	if f.GraphID != "" {
		where = append(where, "graph_id = ?")
		args = append(args, f.GraphID)
	}

	query := "SELECT event_id, event_type, ts_event, session_id, graph_id, node_name, subject_id, payload FROM journal"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts_event DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e       Event
			payload sql.NullString
		)
		if err := rows.Scan(&e.EventID, &e.EventType, &e.TsEvent, &e.SessionID,
			&e.GraphID, &e.NodeName, &e.SubjectID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		if payload.Valid {
			e.Payload = []byte(payload.String)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
