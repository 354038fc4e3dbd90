package school

import (
	"context"
	"database/sql"
	"errors"

	"rollcall/internal/store"
)

// PostgresStore persists schools in Postgres.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a school; the unique index on email enforces one
// registration per contact address.
func (s *PostgresStore) Create(ctx context.Context, sch School) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schools (id, name, principal, email, password, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sch.ID, sch.Name, sch.Principal, sch.Email, sch.PasswordHash, sch.CreatedAt)
	if store.IsUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

// ByEmail returns the school registered under email.
func (s *PostgresStore) ByEmail(ctx context.Context, email string) (School, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, name, principal, email, password, created_at
		FROM schools WHERE email = $1
	`, email))
}

// ByID returns the school with the given id.
func (s *PostgresStore) ByID(ctx context.Context, id string) (School, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, name, principal, email, password, created_at
		FROM schools WHERE id = $1
	`, id))
}

func (s *PostgresStore) scanOne(row *sql.Row) (School, error) {
	var sch School
	if err := row.Scan(&sch.ID, &sch.Name, &sch.Principal, &sch.Email, &sch.PasswordHash, &sch.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return School{}, store.ErrNotFound
		}
		return School{}, err
	}
	return sch, nil
}
