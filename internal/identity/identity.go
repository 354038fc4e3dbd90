// Package identity is the registry of enrolled employees. It issues each
// employee a school-unique human code and a badge token derived from the
// employee id and code, and resolves scanned tokens back to employees.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/errs"
	"rollcall/internal/store"
)

// ErrNotFound is returned when a token or id does not resolve to an
// employee visible to the caller.
var ErrNotFound = errors.New("employee not found")

// codeAttempts bounds the collision retry loop for generated codes. With
// 8 hex chars per code a school would need millions of employees before a
// second collision in a row is plausible.
const codeAttempts = 5

// Employee is an enrolled person. Code and Badge are immutable once issued
// and the employee is never reassigned to another school.
type Employee struct {
	ID        string    `json:"id"`
	SchoolID  string    `json:"school_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Badge     string    `json:"badge"`
	CreatedAt time.Time `json:"created_at"`
}

// Service enrolls employees and resolves badge tokens.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(st Store) *Service {
	return &Service{store: st}
}

// Enroll creates an employee under the given school. The human code is the
// first 8 hex chars of a UUID, uppercased; on a school-level collision the
// insert is retried with a fresh code, relying on the store's uniqueness
// check rather than a read-then-write race.
func (s *Service) Enroll(ctx context.Context, schoolID, name string) (Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Employee{}, errs.Validationf("employee name required")
	}
	if schoolID == "" {
		return Employee{}, errs.Validationf("school id required")
	}

	var lastErr error
	for i := 0; i < codeAttempts; i++ {
		code := newCode()
		emp := Employee{
			ID:        uuid.NewString(),
			SchoolID:  schoolID,
			Name:      name,
			Code:      code,
			CreatedAt: time.Now().UTC(),
		}
		emp.Badge = Token{EmployeeID: emp.ID, Code: code}.String()

		err := s.store.Create(ctx, emp)
		if err == nil {
			return emp, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return Employee{}, err
		}
		lastErr = err
	}
	return Employee{}, lastErr
}

// Resolve looks up an employee by scanned token. Both the id and the code
// must match the stored record; anything else is ErrNotFound.
func (s *Service) Resolve(ctx context.Context, tok Token) (Employee, error) {
	emp, err := s.store.ByID(ctx, tok.EmployeeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, err
	}
	if emp.Code != tok.Code {
		return Employee{}, ErrNotFound
	}
	return emp, nil
}

// VerifyOwnership reports whether emp belongs to the given school.
func (s *Service) VerifyOwnership(emp Employee, schoolID string) bool {
	return emp.SchoolID == schoolID
}

// Employee returns an employee by id, scoped to the caller's school.
func (s *Service) Employee(ctx context.Context, id, schoolID string) (Employee, error) {
	emp, err := s.store.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, err
	}
	if emp.SchoolID != schoolID {
		return Employee{}, ErrNotFound
	}
	return emp, nil
}

// List returns a school's employees ordered by name.
func (s *Service) List(ctx context.Context, schoolID string) ([]Employee, error) {
	return s.store.BySchool(ctx, schoolID)
}

func newCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
