package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[string]*session.Session
	worlds    map[string]*world.World
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[string]*session.Session),
		worlds:   make(map[string]*world.World),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on SaveSession
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// AddWorld registers a world cartridge
func (m *MockStorage) AddWorld(w *world.World) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worlds[w.Meta.ID] = w
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, slot string, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	if slot == "" {
		return fmt.Errorf("save slot name is required")
	}
	copied, err := copySession(s)
	if err != nil {
		return err
	}
	m.sessions[slot] = copied
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context, slot string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[slot]
	if !ok {
		return nil, nil
	}
	copied, err := copySession(s)
	if err != nil {
		return nil, err
	}
	copied.Normalize()
	return copied, nil
}

// copySession round-trips through JSON so callers never share a live
// pointer with the store, matching RedisStorage semantics.
func copySession(s *session.Session) (*session.Session, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	copied := &session.Session{}
	if err := json.Unmarshal(data, copied); err != nil {
		return nil, err
	}
	return copied, nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, slot)
	return nil
}

func (m *MockStorage) ListSaves(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	slots := make([]string, 0, len(m.sessions))
	for slot := range m.sessions {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots, nil
}

func (m *MockStorage) GetWorld(ctx context.Context, id string) (*world.World, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.worlds[id]
	if !ok {
		return nil, fmt.Errorf("world not found: %q", id)
	}
	return w, nil
}

func (m *MockStorage) ListWorlds(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.worlds))
	for id := range m.worlds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
