package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds the live sessions keyed by ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	now      func() time.Time
}

// NewRegistry creates an empty registry. A nil clock means time.Now.
func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		now:      now,
	}
}

// Create starts a new session with the default profile.
func (r *Registry) Create() *Session {
	s := New(r.now)
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete tears the session down and forgets it.
func (r *Registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

// List returns the live sessions, oldest first.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// EvictIdle tears down idle sessions whose last activity is older than ttl.
// Sessions in the middle of a request cycle are kept.
func (r *Registry) EvictIdle(ttl time.Duration) []uuid.UUID {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var evicted []*Session
	for id, s := range r.sessions {
		if s.Loading() || !s.LastActive().Before(cutoff) {
			continue
		}
		evicted = append(evicted, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(evicted))
	for _, s := range evicted {
		s.Close()
		ids = append(ids, s.ID())
	}
	return ids
}
