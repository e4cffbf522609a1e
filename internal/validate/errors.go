package validate

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of every validation failure.
var ErrValidation = errors.New("validation error")

// Error reports a rejected setting value together with the accepted domain,
// so the failure can be diagnosed without the instrument manual.
type Error struct {
	Setting string
	Value   string
	Detail  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Setting, e.Value, e.Detail)
}

func (e *Error) Unwrap() error {
	return ErrValidation
}
