package instrument

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned when an operation is not available on this
// instrument model.
var ErrUnsupported = errors.New("unsupported operation")

// UnsupportedError names the missing feature and the model that lacks it.
type UnsupportedError struct {
	Model     string
	Operation string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Model, e.Operation)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// Unsupported builds the standard error for a missing feature.
func Unsupported(model, operation string) error {
	return &UnsupportedError{Model: model, Operation: operation}
}
