package identity

import (
	"context"
	"database/sql"
	"errors"

	"rollcall/internal/store"
)

// PostgresStore persists employees in Postgres.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts an employee; the unique (school_id, code) index backs the
// enrollment retry loop.
func (s *PostgresStore) Create(ctx context.Context, emp Employee) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, school_id, name, code, badge, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, emp.ID, emp.SchoolID, emp.Name, emp.Code, emp.Badge, emp.CreatedAt)
	if store.IsUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

// ByID returns the employee with the given id.
func (s *PostgresStore) ByID(ctx context.Context, id string) (Employee, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, school_id, name, code, badge, created_at
		FROM employees WHERE id = $1
	`, id)
	var emp Employee
	if err := row.Scan(&emp.ID, &emp.SchoolID, &emp.Name, &emp.Code, &emp.Badge, &emp.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Employee{}, store.ErrNotFound
		}
		return Employee{}, err
	}
	return emp, nil
}

// BySchool returns a school's employees ordered by name.
func (s *PostgresStore) BySchool(ctx context.Context, schoolID string) ([]Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, school_id, name, code, badge, created_at
		FROM employees WHERE school_id = $1
		ORDER BY name, id
	`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Employee
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(&emp.ID, &emp.SchoolID, &emp.Name, &emp.Code, &emp.Badge, &emp.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, emp)
	}
	return res, rows.Err()
}
