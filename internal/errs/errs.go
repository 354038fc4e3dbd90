// Package errs holds the error types shared across service packages.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed caller input. It is terminal: the caller
// must fix the request, retrying is pointless.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
