package api

import (
	"fmt"
	"strings"
)

// ErrorCollector accumulates errors from operations that should all be
// attempted even when some fail, such as disconnecting every instrument at
// shutdown.
type ErrorCollector struct {
	errors []error
}

// NewErrorCollector creates a new ErrorCollector.
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{}
}

// Add records an error under a context label. Nil errors are ignored.
func (ec *ErrorCollector) Add(context string, err error) {
	if err == nil {
		return
	}
	if context != "" {
		err = fmt.Errorf("%s: %w", context, err)
	}
	ec.errors = append(ec.errors, err)
}

// HasErrors returns true if any errors have been collected.
func (ec *ErrorCollector) HasErrors() bool {
	return len(ec.errors) > 0
}

// Result returns a combined error if any errors were collected, nil
// otherwise.
func (ec *ErrorCollector) Result(context string) error {
	switch len(ec.errors) {
	case 0:
		return nil
	case 1:
		if context != "" {
			return fmt.Errorf("%s: %w", context, ec.errors[0])
		}
		return ec.errors[0]
	}

	messages := make([]string, len(ec.errors))
	for i, err := range ec.errors {
		messages[i] = err.Error()
	}

	combined := strings.Join(messages, "; ")
	if context != "" {
		return fmt.Errorf("%s: %s", context, combined)
	}
	return fmt.Errorf("%s", combined)
}
