package identity

import (
	"context"
	"sort"
	"sync"

	"rollcall/internal/store"
)

// MemoryStore keeps employees in memory for tests and single-node dev runs.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]Employee
	codes map[string]struct{} // schoolID + "/" + code
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]Employee),
		codes: make(map[string]struct{}),
	}
}

func (s *MemoryStore) Create(_ context.Context, emp Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emp.SchoolID + "/" + emp.Code
	if _, ok := s.codes[key]; ok {
		return store.ErrDuplicate
	}
	s.byID[emp.ID] = emp
	s.codes[key] = struct{}{}
	return nil
}

func (s *MemoryStore) ByID(_ context.Context, id string) (Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.byID[id]
	if !ok {
		return Employee{}, store.ErrNotFound
	}
	return emp, nil
}

func (s *MemoryStore) BySchool(_ context.Context, schoolID string) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []Employee
	for _, emp := range s.byID {
		if emp.SchoolID == schoolID {
			res = append(res, emp)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Name != res[j].Name {
			return res[i].Name < res[j].Name
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}
