package identity

import (
	"strings"

	"github.com/google/uuid"

	"rollcall/internal/errs"
)

// tokenPrefix tags badge payloads so arbitrary scanned QR content is
// rejected before any lookup happens.
const tokenPrefix = "badge"

// Token is the structured form of a badge payload. The wire form is
// "badge:<employee id>:<code>"; both halves must match the stored employee,
// so a token is globally unique and resolves to exactly one person.
type Token struct {
	EmployeeID string
	Code       string
}

// String renders the wire form embedded in QR badges.
func (t Token) String() string {
	return tokenPrefix + ":" + t.EmployeeID + ":" + t.Code
}

// ParseToken validates a scanned payload and returns its structured form.
// Any malformed input is a ValidationError; parsing never touches storage.
func ParseToken(raw string) (Token, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 || parts[0] != tokenPrefix {
		return Token{}, errs.Validationf("malformed badge token")
	}
	if _, err := uuid.Parse(parts[1]); err != nil {
		return Token{}, errs.Validationf("malformed badge token")
	}
	if parts[2] == "" {
		return Token{}, errs.Validationf("malformed badge token")
	}
	return Token{EmployeeID: parts[1], Code: parts[2]}, nil
}
