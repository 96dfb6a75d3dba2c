// Package session owns the per-session state shared by every surface: the
// profile snapshot, the message log, cached insights and the router's
// single-flight bookkeeping.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pecunia-backend/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned when no live session has the requested ID.
var ErrNotFound = errors.New("session not found")

// State is the router state of a session.
type State string

const (
	StateIdle        State = "idle"
	StateClassifying State = "classifying"
	StateExtracting  State = "extracting"
	StateDispatching State = "dispatching"
	StateFormatting  State = "formatting"
	StateAppended    State = "appended"
	StateFailed      State = "failed"
)

// Subscriber is called with every appended message, outside the session lock.
type Subscriber func(models.Message)

// FetchFunc computes an insight from a profile snapshot.
type FetchFunc func(ctx context.Context, profile models.Profile) (models.AnalysisResult, error)

// Session is one user's conversation. All methods are safe for concurrent use.
type Session struct {
	id        uuid.UUID
	createdAt time.Time
	now       func() time.Time

	mu         sync.RWMutex
	profile    models.Profile
	generation uint64 // bumped on every profile patch
	messages   []models.Message
	insights   map[models.TaskCategory]models.CachedInsight
	state      State
	pending    []string
	lastError  error
	lastActive time.Time
	subs       map[int]Subscriber
	nextSubID  int
	closers    []func(uuid.UUID)
	closed     bool
	done       chan struct{}

	flight singleflight.Group
}

// New creates a session with the default profile. A nil clock means time.Now.
func New(now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Session{
		id:         uuid.New(),
		createdAt:  t,
		now:        now,
		profile:    models.DefaultProfile(),
		insights:   make(map[models.TaskCategory]models.CachedInsight),
		state:      StateIdle,
		lastActive: t,
		subs:       make(map[int]Subscriber),
		done:       make(chan struct{}),
	}
}

func (s *Session) ID() uuid.UUID        { return s.id }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Now reads the session clock.
func (s *Session) Now() time.Time { return s.now() }

// AppendMessage adds msg to the end of the log and then notifies subscribers.
func (s *Session) AppendMessage(msg models.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.lastActive = s.now()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(msg)
	}
}

// Messages returns a copy of the log in insertion order.
func (s *Session) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// MessageCount returns the number of messages in the log.
func (s *Session) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Subscribe registers fn for future appends. The returned func unregisters it.
func (s *Session) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	if !s.closed {
		s.subs[id] = fn
	}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Profile returns a snapshot of the current profile.
func (s *Session) Profile() models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// ApplyProfilePatch merges patch into the profile and drops every cached
// insight. It does not refetch anything.
func (s *Session) ApplyProfilePatch(patch models.ProfilePatch) models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = s.profile.Apply(patch)
	s.generation++
	s.insights = make(map[models.TaskCategory]models.CachedInsight)
	s.lastActive = s.now()
	return s.profile.Clone()
}

// Insight returns the cached insight for category, if any.
func (s *Session) Insight(category models.TaskCategory) (models.CachedInsight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ci, ok := s.insights[category]
	return ci, ok
}

// GetOrFetchInsight returns the cached insight for category, or computes it
// with fetch against the current profile snapshot. Concurrent callers for the
// same category and profile generation share one fetch. A result computed
// against a profile that has since been patched is returned but not cached.
// The fetch runs detached from ctx cancellation; the transport deadline bounds it.
func (s *Session) GetOrFetchInsight(ctx context.Context, category models.TaskCategory, fetch FetchFunc) (models.CachedInsight, error) {
	s.mu.Lock()
	if ci, ok := s.insights[category]; ok {
		s.mu.Unlock()
		return ci, nil
	}
	gen := s.generation
	snapshot := s.profile.Clone()
	s.lastActive = s.now()
	s.mu.Unlock()

	key := fmt.Sprintf("%s/%d", category, gen)
	v, err, _ := s.flight.Do(key, func() (any, error) {
		res, err := fetch(context.WithoutCancel(ctx), snapshot)
		if err != nil {
			return nil, err
		}
		ci := models.CachedInsight{Value: res, FetchedAt: s.now()}

		s.mu.Lock()
		if s.generation == gen {
			s.insights[category] = ci
		}
		s.mu.Unlock()
		return ci, nil
	})
	if err != nil {
		return models.CachedInsight{}, err
	}
	return v.(models.CachedInsight), nil
}

// Generation counts profile patches applied so far.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// BeginCycle claims the session for a new request cycle. When the session is
// busy it buffers text for the running cycle and returns false.
func (s *Session) BeginCycle(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = s.now()
	if s.state == StateIdle {
		s.state = StateClassifying
		return true
	}
	s.pending = append(s.pending, text)
	return false
}

// NextPending pops the oldest buffered input and keeps the session claimed.
// When nothing is buffered it releases the session back to idle.
func (s *Session) NextPending() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		s.state = StateIdle
		return "", false
	}
	text := s.pending[0]
	s.pending = s.pending[1:]
	s.state = StateClassifying
	return text, true
}

// PendingCount returns how many inputs are waiting for the running cycle.
func (s *Session) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

func (s *Session) SetState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loading reports whether a request cycle is running.
func (s *Session) Loading() bool {
	return s.State() != StateIdle
}

// SetLastError records the most recent failure. nil clears it.
func (s *Session) SetLastError(err error) {
	s.mu.Lock()
	s.lastError = err
	s.mu.Unlock()
}

func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// LastActive is the time of the most recent interaction.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// OnClose registers fn to run once when the session is torn down.
func (s *Session) OnClose(fn func(uuid.UUID)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, fn)
}

// Done is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close drops all subscribers and runs the close hooks. It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.subs = make(map[int]Subscriber)
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	for _, fn := range closers {
		fn(s.id)
	}
}
