package school

import (
	"context"
	"sync"

	"rollcall/internal/store"
)

// MemoryStore keeps schools in memory for tests and single-node dev runs.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]School
	byEmail map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]School),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, sch School) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[sch.Email]; ok {
		return store.ErrDuplicate
	}
	s.byID[sch.ID] = sch
	s.byEmail[sch.Email] = sch.ID
	return nil
}

func (s *MemoryStore) ByEmail(_ context.Context, email string) (School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return School{}, store.ErrNotFound
	}
	return s.byID[id], nil
}

func (s *MemoryStore) ByID(_ context.Context, id string) (School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sch, ok := s.byID[id]
	if !ok {
		return School{}, store.ErrNotFound
	}
	return sch, nil
}
