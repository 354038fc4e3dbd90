package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &DB{Client: db}, db.PingContext(context.Background())
}

// EnsureSchema creates the tables and indexes the service relies on. The
// unique index on (employee_id, day) is load-bearing: it is the last line of
// defense against double check-ins for the same employee and day.
func (d *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schools (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL,
			principal  TEXT NOT NULL,
			email      TEXT UNIQUE NOT NULL,
			password   TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id         UUID PRIMARY KEY,
			school_id  UUID NOT NULL REFERENCES schools(id),
			name       TEXT NOT NULL,
			code       TEXT NOT NULL,
			badge      TEXT UNIQUE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (school_id, code)
		)`,
		`CREATE TABLE IF NOT EXISTS attendance_entries (
			id           UUID PRIMARY KEY,
			employee_id  UUID NOT NULL REFERENCES employees(id),
			day          DATE NOT NULL,
			check_in_at  TIMESTAMPTZ NOT NULL,
			check_out_at TIMESTAMPTZ,
			UNIQUE (employee_id, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_employees_school ON employees (school_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_day ON attendance_entries (day DESC)`,
	}
	for _, s := range stmts {
		if _, err := d.Client.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
