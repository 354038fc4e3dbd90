package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/errs"
)

func TestParseTokenRoundTrip(t *testing.T) {
	tok := Token{EmployeeID: "3f6fd6e5-9a54-4f74-b7a1-54d54b30a94a", Code: "AB12CD34"}
	parsed, err := ParseToken(tok.String())
	require.NoError(t, err)
	assert.Equal(t, tok, parsed)
}

func TestParseTokenRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"wrong prefix", "employee:3f6fd6e5-9a54-4f74-b7a1-54d54b30a94a:AB12CD34"},
		{"missing code", "badge:3f6fd6e5-9a54-4f74-b7a1-54d54b30a94a:"},
		{"missing segment", "badge:3f6fd6e5-9a54-4f74-b7a1-54d54b30a94a"},
		{"extra segment", "badge:3f6fd6e5-9a54-4f74-b7a1-54d54b30a94a:AB12CD34:extra"},
		{"bad uuid", "badge:not-a-uuid:AB12CD34"},
		{"bare text", "hello world"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseToken(tc.raw)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))
		})
	}
}
