package ui

import "errors"

// ValidationError is a local form-validation failure. Its text is the
// user-facing message; it never reaches the network.
type ValidationError string

func (v ValidationError) Error() string { return string(v) }

// Invalid builds a ValidationError.
func Invalid(msg string) error { return ValidationError(msg) }

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
