package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process Store.
//
// Sessions do not survive a restart and are not shared between replicas, so
// it suits single-node deployments and tests. Expired entries are purged
// when they are next read.
type MemoryStore struct {
	lock  sync.Mutex
	data  map[string]Session
	clock func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string]Session),
		clock: time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, s Session) error {
	if _, err := s.validate(m.clock()); err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if _, exists := m.data[s.SessionID]; exists {
		return fmt.Errorf("session: id collision: %w", ErrInvalid)
	}
	m.data[s.SessionID] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	now := m.clock()

	m.lock.Lock()
	defer m.lock.Unlock()

	s, exists := m.data[sessionID]
	if !exists {
		return nil, nil
	}

	if s.Expired(now) {
		delete(m.data, sessionID)
		return nil, nil
	}

	return &s, nil
}

func (m *MemoryStore) Update(_ context.Context, s Session) error {
	if s.SessionID == "" {
		return ErrInvalid
	}

	_, err := s.validate(m.clock())

	m.lock.Lock()
	defer m.lock.Unlock()

	if err != nil {
		delete(m.data, s.SessionID)
		return nil
	}
	m.data[s.SessionID] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.lock.Lock()
	delete(m.data, sessionID)
	m.lock.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.data)
}
