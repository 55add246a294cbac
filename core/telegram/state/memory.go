package state

import "sync"

const shardCount = 16

type shard[T any] struct {
	mu       sync.RWMutex
	sessions map[int64]T
}

// Manager is a concurrency-safe map of sessions keyed by Telegram user id.
// Keys are spread over independently locked shards so unrelated users never
// contend on one lock.
type Manager[T any] struct {
	shards [shardCount]shard[T]
}

// NewManager constructs an empty Manager.
func NewManager[T any]() *Manager[T] {
	m := &Manager[T]{}
	for i := range m.shards {
		m.shards[i].sessions = make(map[int64]T)
	}
	return m
}

func (m *Manager[T]) shard(userID int64) *shard[T] {
	return &m.shards[uint64(userID)%shardCount]
}

// Get returns the session for a user and whether it exists.
func (m *Manager[T]) Get(userID int64) (T, bool) {
	s := m.shard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.sessions[userID]
	return v, ok
}

// Set replaces the session for a user.
func (m *Manager[T]) Set(userID int64, v T) {
	s := m.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = v
}

// Update atomically replaces the session with fn's result and returns it.
// fn must not block.
func (m *Manager[T]) Update(userID int64, fn func(cur T, ok bool) T) T {
	s := m.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sessions[userID]
	next := fn(cur, ok)
	s.sessions[userID] = next
	return next
}

// Clear removes the session for a user.
func (m *Manager[T]) Clear(userID int64) {
	s := m.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Has reports whether the user has a session.
func (m *Manager[T]) Has(userID int64) bool {
	_, ok := m.Get(userID)
	return ok
}

// Len returns the number of live sessions.
func (m *Manager[T]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.sessions)
		s.mu.RUnlock()
	}
	return n
}
