package network

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks every live Connection, keyed by its UUID. It is the
// network-layer counterpart to session.Registry: the session registry
// enforces one session per userId, this one enforces nothing by itself but
// gives the handler layer a way to find and close the connection an
// evicted session belonged to.
type Registry struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Connection
	byOwner map[uint32]*Connection
}

func NewRegistry() *Registry {
	return &Registry{
		byID:    make(map[uuid.UUID]*Connection),
		byOwner: make(map[uint32]*Connection),
	}
}

func (r *Registry) Register(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID()] = c
}

// Unregister removes a connection. Safe to call more than once.
func (r *Registry) Unregister(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, c.ID())
	if r.byOwner[c.UserID()] == c {
		delete(r.byOwner, c.UserID())
	}
}

// BindOwner records that userID's traffic now flows through c, so a later
// eviction can find and close the old connection.
func (r *Registry) BindOwner(userID uint32, c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byOwner[userID] = c
}

func (r *Registry) ByOwner(userID uint32) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byOwner[userID]
	return c, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// All returns a snapshot of every live connection.
func (r *Registry) All() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out
}

// CloseAll closes every tracked connection, for graceful shutdown.
func (r *Registry) CloseAll() {
	for _, c := range r.All() {
		c.Close()
	}
}
