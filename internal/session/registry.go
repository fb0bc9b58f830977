package session

import "sync"

// Registry is the process-wide userId -> Session map. It only enforces the
// single-session invariant; it has no opinion about how a caller tears
// down the connection that owned an evicted session — that is the
// network/handler layer's job, triggered off the *Session Bind returns.
type Registry struct {
	mu   sync.RWMutex
	byID map[uint32]*Session
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[uint32]*Session)}
}

// Bind installs sess as the current session for its userId, returning the
// previously bound session for that userId if one existed (evicted, true).
// The caller must close the prior owning connection: a second successful
// login always wins over the first.
func (r *Registry) Bind(sess *Session) (evicted *Session, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prior, existed := r.byID[sess.UserID]
	r.byID[sess.UserID] = sess
	return prior, existed
}

// Get returns the current session for a userId, if any.
func (r *Registry) Get(userID uint32) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.byID[userID]
	return sess, ok
}

// Unbind removes a session, but only if sess is still the one currently
// bound to its userId: a stale teardown from an already-evicted connection
// must not remove the session that replaced it.
func (r *Registry) Unbind(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.byID[sess.UserID]; ok && current == sess {
		delete(r.byID, sess.UserID)
	}
}

// Count returns the number of currently bound sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// All returns a snapshot slice of every bound session, safe to iterate
// without holding the registry lock.
func (r *Registry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.byID))
	for _, sess := range r.byID {
		out = append(out, sess)
	}
	return out
}
