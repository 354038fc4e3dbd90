package report

import (
	"context"
	"database/sql"
	"time"
)

// PostgresStore runs the report queries against Postgres. The join follows
// employee ownership, so a school only ever sees its own entries.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Rows(ctx context.Context, schoolID string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.day, e.name, a.check_in_at, a.check_out_at
		FROM attendance_entries a
		JOIN employees e ON e.id = a.employee_id
		WHERE e.school_id = $1
		ORDER BY a.day DESC, e.name ASC
	`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Day, &r.EmployeeName, &r.CheckInAt, &r.CheckOutAt); err != nil {
			return nil, err
		}
		r.Status = statusOf(r.CheckOutAt)
		res = append(res, r)
	}
	return res, rows.Err()
}

func (s *PostgresStore) EmployeeCount(ctx context.Context, schoolID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employees WHERE school_id = $1`, schoolID).Scan(&n)
	return n, err
}

func (s *PostgresStore) PresentOn(ctx context.Context, schoolID string, day time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM attendance_entries a
		JOIN employees e ON e.id = a.employee_id
		WHERE e.school_id = $1 AND a.day = $2
	`, schoolID, day).Scan(&n)
	return n, err
}

func statusOf(checkOut *time.Time) string {
	if checkOut != nil {
		return "CheckedOut"
	}
	return "Present"
}
