package ledger

import (
	"context"
	"sync"
	"time"

	"rollcall/internal/store"
)

// MemoryStore keeps attendance entries in memory for tests and single-node
// dev runs. Same contract as the Postgres store: one entry per
// (employee, day), check-out settable exactly once.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*Entry
	byDay map[string]string // employeeID/day -> entry id
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]*Entry),
		byDay: make(map[string]string),
	}
}

func (s *MemoryStore) CreateEntry(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey(e.EmployeeID, e.Day)
	if _, ok := s.byDay[key]; ok {
		return store.ErrDuplicate
	}
	cp := e
	s.byID[e.ID] = &cp
	s.byDay[key] = e.ID
	return nil
}

func (s *MemoryStore) EntryFor(_ context.Context, employeeID string, day time.Time) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byDay[dayKey(employeeID, day)]
	if !ok {
		return Entry{}, store.ErrNotFound
	}
	return *s.byID[id], nil
}

func (s *MemoryStore) SetCheckOut(_ context.Context, entryID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[entryID]
	if !ok {
		return false, store.ErrNotFound
	}
	if e.CheckOutAt != nil {
		return false, nil
	}
	t := at
	e.CheckOutAt = &t
	return true, nil
}

// Snapshot returns a copy of every entry, newest day first. Used by the
// in-memory reporting store.
func (s *MemoryStore) Snapshot() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Entry, 0, len(s.byID))
	for _, e := range s.byID {
		res = append(res, *e)
	}
	return res
}

func dayKey(employeeID string, day time.Time) string {
	return employeeID + "/" + day.Format("2006-01-02")
}
