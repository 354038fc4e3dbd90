package school_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/errs"
	"rollcall/internal/school"
)

func TestRegisterHashesPassword(t *testing.T) {
	svc := school.NewService(school.NewMemoryStore())
	ctx := context.Background()

	sch, err := svc.Register(ctx, "Lincoln School", "Jane Principal", "admin@lincoln.edu", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, sch.ID)
	assert.NotEqual(t, "correct horse", sch.PasswordHash)
	assert.NotContains(t, sch.PasswordHash, "correct horse")
}

func TestRegisterValidation(t *testing.T) {
	svc := school.NewService(school.NewMemoryStore())
	ctx := context.Background()

	cases := []struct {
		name, principal, email, password string
	}{
		{"", "Jane", "a@b.c", "longenough"},
		{"Lincoln", "", "a@b.c", "longenough"},
		{"Lincoln", "Jane", "not-an-email", "longenough"},
		{"Lincoln", "Jane", "a@b.c", "short"},
	}
	for _, tc := range cases {
		_, err := svc.Register(ctx, tc.name, tc.principal, tc.email, tc.password)
		assert.True(t, errs.IsValidation(err), "case %+v", tc)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := school.NewService(school.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "Lincoln", "Jane", "admin@lincoln.edu", "longenough")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Other", "John", "Admin@Lincoln.edu", "longenough")
	require.ErrorIs(t, err, school.ErrEmailTaken, "email comparison is case-insensitive")
}

func TestAuthenticate(t *testing.T) {
	svc := school.NewService(school.NewMemoryStore())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Lincoln", "Jane", "admin@lincoln.edu", "longenough")
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "admin@lincoln.edu", "longenough")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, got.ID)

	// Wrong password and unknown email fail identically.
	_, errPw := svc.Authenticate(ctx, "admin@lincoln.edu", "wrong password")
	require.ErrorIs(t, errPw, school.ErrInvalidCredentials)
	_, errEmail := svc.Authenticate(ctx, "nobody@lincoln.edu", "longenough")
	require.ErrorIs(t, errEmail, school.ErrInvalidCredentials)
	assert.Equal(t, errPw.Error(), errEmail.Error())
}
