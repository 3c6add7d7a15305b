package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Compile-time interface satisfaction check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps sessions in a map guarded by a RWMutex. Values are cloned
// on the way in and out so callers never share engine state.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]Session{}}
}

func (m *MemoryStore) Create(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("%w: %q", ErrExists, s.ID)
	}
	next := s.Clone()
	next.Version = 1
	m.sessions[s.ID] = next
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, s Session) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.sessions[s.ID]
	if !ok {
		return Session{}, ErrNotFound
	}
	if current.Version != s.Version {
		return Session{}, fmt.Errorf(
			"%w: session %q expected version %d, got %d",
			ErrVersionConflict,
			s.ID,
			current.Version,
			s.Version,
		)
	}

	next := s.Clone()
	next.Version = current.Version + 1
	next.CreatedAt = current.CreatedAt
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = time.Now().UTC()
	}
	m.sessions[s.ID] = next
	return next.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

func (m *MemoryStore) Close() error {
	return nil
}
