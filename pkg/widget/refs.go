package widget

import "sync"

// EditorRef is implemented by a mounted editor so frame actions can reach it.
type EditorRef interface {
	Save() error
}

// EditorRefs maps editor widget ids to their mounted editors.
type EditorRefs struct {
	mu   sync.RWMutex
	refs map[string]EditorRef
}

// NewEditorRefs creates an empty registry.
func NewEditorRefs() *EditorRefs {
	return &EditorRefs{refs: make(map[string]EditorRef)}
}

// Register binds ref to a widget id.
func (r *EditorRefs) Register(widgetID string, ref EditorRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs[widgetID] = ref
}

// Unregister drops the binding for a widget id.
func (r *EditorRefs) Unregister(widgetID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.refs, widgetID)
}

// Save saves the editor bound to widgetID. Missing editors are a no-op.
func (r *EditorRefs) Save(widgetID string) error {
	r.mu.RLock()
	ref, ok := r.refs[widgetID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return ref.Save()
}
