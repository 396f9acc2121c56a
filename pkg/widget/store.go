package widget

import "sync"

// Store is the ordered collection of open widgets, keyed by id.
type Store struct {
	mu    sync.RWMutex
	order []string
	items map[string]Widget
}

// NewStore creates an empty widget store.
func NewStore() *Store {
	return &Store{items: make(map[string]Widget)}
}

// Append inserts w, or replaces the widget with the same id in place.
func (s *Store) Append(w Widget) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[w.ID]; !exists {
		s.order = append(s.order, w.ID)
	}
	s.items[w.ID] = w
}

// Remove deletes the widget with id. Unknown ids are ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

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

// UpdateDisplayType switches a widget between popup and dock.
func (s *Store) UpdateDisplayType(id string, dt DisplayType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.items[id]
	if !ok {
		return false
	}
	w.DisplayType = dt
	s.items[id] = w
	return true
}

// Reset removes every widget.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.items = make(map[string]Widget)
}

// Get returns the widget with id.
func (s *Store) Get(id string) (Widget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.items[id]
	return w, ok
}

// Len returns the number of open widgets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// List returns all widgets in insertion order.
func (s *Store) List() []Widget {
	return s.filter(func(Widget) bool { return true })
}

// ByContainer returns the widgets in a container.
func (s *Store) ByContainer(containerID string) []Widget {
	return s.filter(func(w Widget) bool { return w.ContainerID == containerID })
}

// ByGroup returns the widgets in a container group.
func (s *Store) ByGroup(containerID, groupID string) []Widget {
	return s.filter(func(w Widget) bool {
		return w.ContainerID == containerID && w.GroupID == groupID
	})
}

func (s *Store) filter(keep func(Widget) bool) []Widget {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Widget, 0, len(s.order))
	for _, id := range s.order {
		if w := s.items[id]; keep(w) {
			out = append(out, w)
		}
	}
	return out
}
