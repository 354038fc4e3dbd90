// Package school is the tenant directory: registered schools and their
// credentials. A school id is the isolation boundary for every other record
// in the system.
package school

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rollcall/internal/errs"
	"rollcall/internal/store"
)

var (
	// ErrEmailTaken is returned when registration reuses a contact email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// login failures do not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// School is a registered organization. Immutable after creation.
type School struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Principal    string    `json:"principal"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Service handles registration and credential checks.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(st Store) *Service {
	return &Service{store: st}
}

// Register creates a school with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, principal, email, password string) (School, error) {
	name = strings.TrimSpace(name)
	principal = strings.TrimSpace(principal)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case name == "":
		return School{}, errs.Validationf("school name required")
	case principal == "":
		return School{}, errs.Validationf("principal name required")
	case !strings.Contains(email, "@"):
		return School{}, errs.Validationf("valid email required")
	case len(password) < 8:
		return School{}, errs.Validationf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return School{}, err
	}

	sch := School{
		ID:           uuid.NewString(),
		Name:         name,
		Principal:    principal,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, sch); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return School{}, ErrEmailTaken
		}
		return School{}, err
	}
	return sch, nil
}

// Authenticate returns the school for a matching email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (School, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	sch, err := s.store.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return School{}, ErrInvalidCredentials
		}
		return School{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(sch.PasswordHash), []byte(password)) != nil {
		return School{}, ErrInvalidCredentials
	}
	return sch, nil
}
