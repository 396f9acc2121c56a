package identity

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Kind names the action a widget or dialog is opened for.
type Kind string

const (
	KindEditor             Kind = "editor"
	KindUpdateNodeProperty Kind = "update_node_property"
	KindAddConnection      Kind = "add_connection"
	KindReplaceNode        Kind = "replace_node"
	KindDeleteNode         Kind = "delete_node"
)

// Strategy selects how an identifier treats repeated requests.
type Strategy int

const (
	// Dedupe maps identical (kind, scope) to the same identifier so a
	// second open replaces the first.
	Dedupe Strategy = iota
	// Fresh salts the identifier so every open gets its own instance.
	Fresh
)

// GraphActionsWidgetID prefixes every graph action widget.
const GraphActionsWidgetID = "graph-actions"

// deleteNodeDialogPrefix prefixes the confirmation dialog for node deletion.
const deleteNodeDialogPrefix = "delete-node-dialog-"

// ErrMissingScope is returned when a scope key is empty.
var ErrMissingScope = errors.New("identity: missing scope key")

// Scheme derives stable identifiers from an action kind and its scope keys.
type Scheme struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewScheme creates a Scheme salting fresh identifiers with the wall clock.
func NewScheme() *Scheme {
	return &Scheme{now: time.Now}
}

// NewSchemeWithClock creates a Scheme with an injected clock.
func NewSchemeWithClock(now func() time.Time) *Scheme {
	return &Scheme{now: now}
}

// Derive returns the identifier for kind and scope under strategy.
func (s *Scheme) Derive(strategy Strategy, kind Kind, scope ...string) (string, error) {
	if len(scope) == 0 {
		return "", ErrMissingScope
	}
	for _, key := range scope {
		if key == "" {
			return "", ErrMissingScope
		}
	}

	switch strategy {
	case Fresh:
		return strings.Join(scope, "-") + "-" + strconv.FormatInt(s.salt(), 10), nil
	default:
		return GraphActionsWidgetID + "-" + string(kind) + "-" + strings.Join(scope, "-"), nil
	}
}

// MustDerive is Derive for callers that already gated on scope.
func (s *Scheme) MustDerive(strategy Strategy, kind Kind, scope ...string) string {
	id, err := s.Derive(strategy, kind, scope...)
	if err != nil {
		panic(err)
	}
	return id
}

// salt returns unix milliseconds, bumped so it never repeats or goes back.
func (s *Scheme) salt() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.now().UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return ms
}

// UpdateNodePropertyWidgetID keeps the historical "graph-actions-update-<node>" shape.
func UpdateNodePropertyWidgetID(nodeName string) string {
	return GraphActionsWidgetID + "-update-" + nodeName
}

// DeleteNodeDialogID scopes the delete confirmation to a single node name.
func DeleteNodeDialogID(nodeName string) string {
	return deleteNodeDialogPrefix + nodeName
}
