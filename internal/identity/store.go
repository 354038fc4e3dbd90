package identity

import "context"

// Store persists employees. Create returns store.ErrDuplicate when the
// (school, code) pair is taken; lookups return store.ErrNotFound.
type Store interface {
	Create(ctx context.Context, emp Employee) error
	ByID(ctx context.Context, id string) (Employee, error)
	BySchool(ctx context.Context, schoolID string) ([]Employee, error)
}
