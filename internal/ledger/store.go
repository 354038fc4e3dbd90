package ledger

import (
	"context"
	"time"
)

// Store persists attendance entries. Implementations must make CreateEntry
// atomic under the unique (employee, day) constraint and SetCheckOut a
// single guarded update that reports false when the check-out was already
// set; the service's re-evaluation loop depends on both.
type Store interface {
	// CreateEntry inserts a new entry; store.ErrDuplicate when an entry for
	// (employee, day) already exists.
	CreateEntry(ctx context.Context, e Entry) error
	// EntryFor returns the entry for (employee, day); store.ErrNotFound when
	// no scan happened that day.
	EntryFor(ctx context.Context, employeeID string, day time.Time) (Entry, error)
	// SetCheckOut sets the check-out time if and only if it is still unset.
	SetCheckOut(ctx context.Context, entryID string, at time.Time) (bool, error)
}
