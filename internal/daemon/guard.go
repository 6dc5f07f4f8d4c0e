package daemon

import (
	"sync"

	"github.com/1broseidon/deskgrid/internal/store"
)

// Guarded serializes access to a store shared by the watcher and other
// front ends.
type Guarded struct {
	mu    sync.Mutex
	store *store.Store
}

// NewGuarded wraps s.
func NewGuarded(s *store.Store) *Guarded {
	return &Guarded{store: s}
}

// Do runs fn with exclusive access to the store.
func (g *Guarded) Do(fn func(*store.Store) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.store)
}
