package flow

import "sync"

// State holds the canvas nodes and edges. Both are replaced as a whole.
type State struct {
	mu      sync.RWMutex
	nodes   []Node
	edges   []Edge
	version uint64
}

// NewState creates an empty canvas state.
func NewState() *State {
	return &State{}
}

// SetNodesAndEdges replaces the canvas contents.
func (s *State) SetNodesAndEdges(nodes []Node, edges []Edge) {
	n := append([]Node(nil), nodes...)
	e := append([]Edge(nil), edges...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = n
	s.edges = e
	s.version++
}

// Snapshot returns copies of the current nodes and edges.
func (s *State) Snapshot() ([]Node, []Edge) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Node(nil), s.nodes...), append([]Edge(nil), s.edges...)
}

// Version increments on every SetNodesAndEdges.
func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Node looks up a node by name.
func (s *State) Node(name string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.nodes {
		if n.Data.Name == name {
			return n, true
		}
	}
	return Node{}, false
}
