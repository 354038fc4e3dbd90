package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rollcall/internal/store"
)

// PostgresStore persists attendance entries in Postgres.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateEntry inserts the day's entry. The unique (employee_id, day) index
// turns a lost insert race into store.ErrDuplicate instead of a second row.
func (s *PostgresStore) CreateEntry(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_entries (id, employee_id, day, check_in_at)
		VALUES ($1, $2, $3, $4)
	`, e.ID, e.EmployeeID, e.Day, e.CheckInAt)
	if store.IsUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

// EntryFor returns the entry for (employee, day).
func (s *PostgresStore) EntryFor(ctx context.Context, employeeID string, day time.Time) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, day, check_in_at, check_out_at
		FROM attendance_entries
		WHERE employee_id = $1 AND day = $2
	`, employeeID, day)
	var e Entry
	if err := row.Scan(&e.ID, &e.EmployeeID, &e.Day, &e.CheckInAt, &e.CheckOutAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, store.ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

// SetCheckOut sets the check-out time only while it is unset, in one
// statement. A false return means someone else completed the day first.
func (s *PostgresStore) SetCheckOut(ctx context.Context, entryID string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE attendance_entries
		SET check_out_at = $2
		WHERE id = $1 AND check_out_at IS NULL
	`, entryID, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
