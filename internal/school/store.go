package school

import "context"

// Store persists schools. Implementations return store.ErrDuplicate on email
// reuse and store.ErrNotFound for missing records.
type Store interface {
	Create(ctx context.Context, sch School) error
	ByEmail(ctx context.Context, email string) (School, error)
	ByID(ctx context.Context, id string) (School, error)
}
