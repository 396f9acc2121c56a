package dialog

import (
	"context"
	"errors"
	"sync"
)

// Variant is a presentation hint.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

var (
	// ErrNotFound is returned when no dialog has the requested id.
	ErrNotFound = errors.New("dialog: not found")
	// ErrAlreadyResolved is returned when the dialog instance was already
	// confirmed or cancelled.
	ErrAlreadyResolved = errors.New("dialog: already resolved")
)

// Dialog is a modal confirmation. Whichever callback runs must remove the
// dialog from the store itself, normally with Release.
type Dialog struct {
	ID        string
	Title     string
	Content   string
	Variant   Variant
	OnCancel  func(ctx context.Context)
	OnConfirm func(ctx context.Context)
}

// entry is one appended instance; a replacement gets a new entry.
type entry struct {
	dialog   Dialog
	resolved bool
}

// Store holds at most one dialog per id.
type Store struct {
	mu    sync.RWMutex
	order []string
	items map[string]*entry
}

// NewStore creates an empty dialog store.
func NewStore() *Store {
	return &Store{items: make(map[string]*entry)}
}

// Append adds d, replacing any dialog with the same id.
func (s *Store) Append(d Dialog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[d.ID]; !exists {
		s.order = append(s.order, d.ID)
	}
	s.items[d.ID] = &entry{dialog: d}
}

// Remove deletes the dialog with id. Unknown ids are ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

// Release removes the instance whose callback is running under ctx. A
// replacement appended under the same id in the meantime is left alone.
// Outside a callback it behaves like Remove.
func (s *Store) Release(ctx context.Context, id string) {
	e, ok := ctx.Value(entryKey{}).(*entry)
	if !ok {
		s.Remove(id)
		return
	}
	s.removeEntry(id, e)
}

func (s *Store) removeLocked(id string) {
	if _, exists := s.items[id]; !exists {
		return
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Get returns the dialog with id.
func (s *Store) Get(id string) (Dialog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	if !ok {
		return Dialog{}, false
	}
	return e.dialog, true
}

// Resolving reports whether the dialog was confirmed or cancelled but its
// callback has not removed it yet.
func (s *Store) Resolving(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	return ok && e.resolved
}

// List returns the open dialogs in the order they were first appended.
func (s *Store) List() []Dialog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Dialog, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].dialog)
	}
	return out
}

// Top returns the most recently opened dialog.
func (s *Store) Top() (Dialog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return Dialog{}, false
	}
	return s.items[s.order[len(s.order)-1]].dialog, true
}

// Confirm runs OnConfirm of the current instance with id. It blocks until
// the callback returns.
func (s *Store) Confirm(ctx context.Context, id string) error {
	return s.resolve(ctx, id, true)
}

// Cancel runs OnCancel of the current instance with id.
func (s *Store) Cancel(ctx context.Context, id string) error {
	return s.resolve(ctx, id, false)
}

func (s *Store) resolve(ctx context.Context, id string, confirm bool) error {
	s.mu.Lock()
	e, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if e.resolved {
		s.mu.Unlock()
		return ErrAlreadyResolved
	}
	e.resolved = true
	cb := e.dialog.OnCancel
	if confirm {
		cb = e.dialog.OnConfirm
	}
	s.mu.Unlock()

	// callbacks re-enter the store to remove themselves
	if cb == nil {
		s.removeEntry(id, e)
		return nil
	}
	cb(context.WithValue(ctx, entryKey{}, e))
	return nil
}

// entryKey carries the resolving instance into its callback.
type entryKey struct{}

// removeEntry removes id only if it still points at e.
func (s *Store) removeEntry(id string, e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.items[id]; ok && current == e {
		s.removeLocked(id)
	}
}
