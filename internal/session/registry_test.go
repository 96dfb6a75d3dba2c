package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestRegistryCreateGetDelete(t *testing.T) {
	r := NewRegistry(nil)
	s := r.Create()

	got, err := r.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, r.Delete(s.ID()))
	_, err = r.Get(s.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Delete(s.ID()), ErrNotFound)
	_, err = r.Get(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryEvictIdle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(clock.Now)

	stale := r.Create()
	busy := r.Create()
	require.True(t, busy.BeginCycle("still working"))

	var closed bool
	stale.OnClose(func(uuid.UUID) { closed = true })

	clock.Advance(3 * time.Hour)
	fresh := r.Create()

	evicted := r.EvictIdle(2 * time.Hour)
	assert.Equal(t, []uuid.UUID{stale.ID()}, evicted)
	assert.True(t, closed)
	assert.Equal(t, 2, r.Len())

	_, err := r.Get(fresh.ID())
	assert.NoError(t, err)
	_, err = r.Get(busy.ID())
	assert.NoError(t, err)
}

func TestRegistryListOldestFirst(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(clock.Now)
	first := r.Create()
	clock.Advance(time.Minute)
	second := r.Create()

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID(), list[0].ID())
	assert.Equal(t, second.ID(), list[1].ID())
}
