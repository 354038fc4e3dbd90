package report

import (
	"context"
	"sort"
	"time"

	"rollcall/internal/identity"
	"rollcall/internal/ledger"
)

// MemoryStore joins the in-memory identity and ledger stores for tests and
// single-node dev runs.
type MemoryStore struct {
	employees *identity.MemoryStore
	entries   *ledger.MemoryStore
}

// NewMemoryStore composes the two backing stores.
func NewMemoryStore(employees *identity.MemoryStore, entries *ledger.MemoryStore) *MemoryStore {
	return &MemoryStore{employees: employees, entries: entries}
}

func (s *MemoryStore) Rows(ctx context.Context, schoolID string) ([]Row, error) {
	emps, err := s.employees.BySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(emps))
	for _, e := range emps {
		names[e.ID] = e.Name
	}

	var res []Row
	for _, e := range s.entries.Snapshot() {
		name, ok := names[e.EmployeeID]
		if !ok {
			continue
		}
		res = append(res, Row{
			Day:          e.Day,
			EmployeeName: name,
			CheckInAt:    e.CheckInAt,
			CheckOutAt:   e.CheckOutAt,
			Status:       statusOf(e.CheckOutAt),
		})
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Day.Equal(res[j].Day) {
			return res[i].Day.After(res[j].Day)
		}
		return res[i].EmployeeName < res[j].EmployeeName
	})
	return res, nil
}

func (s *MemoryStore) EmployeeCount(ctx context.Context, schoolID string) (int, error) {
	emps, err := s.employees.BySchool(ctx, schoolID)
	return len(emps), err
}

func (s *MemoryStore) PresentOn(ctx context.Context, schoolID string, day time.Time) (int, error) {
	emps, err := s.employees.BySchool(ctx, schoolID)
	if err != nil {
		return 0, err
	}
	mine := make(map[string]struct{}, len(emps))
	for _, e := range emps {
		mine[e.ID] = struct{}{}
	}
	n := 0
	for _, e := range s.entries.Snapshot() {
		if _, ok := mine[e.EmployeeID]; ok && sameDay(e.Day, day) {
			n++
		}
	}
	return n, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
