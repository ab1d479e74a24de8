package services

import (
	"errors"
	"fmt"
)

// ErrMissingField is returned when a required request field is absent or
// empty.
var ErrMissingField = errors.New("missing required field")

// ErrInvalidCredentials is returned for both an unknown username and a
// wrong password, so callers cannot enumerate accounts. The two cases are
// distinguishable only in server logs.
var ErrInvalidCredentials = errors.New("invalid username or password")

// InvalidFieldError reports a profile field whose value could not be
// coerced to its declared type.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid value for field %q", e.Field)
}
