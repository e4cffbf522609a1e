package bus

import (
	"errors"
	"fmt"
)

// Error taxonomy roots. Every error returned by this package wraps one of
// these so callers can classify failures with errors.Is.
var (
	ErrConnection = errors.New("connection error")
	ErrCommand    = errors.New("command error")
)

// Connection errors
var (
	ErrNotConnected     = fmt.Errorf("%w: session is not open", ErrConnection)
	ErrNoDevice         = fmt.Errorf("%w: no matching instrument found", ErrConnection)
	ErrIdentityMismatch = fmt.Errorf("%w: instrument identity does not match", ErrConnection)
	ErrOpenFailed       = fmt.Errorf("%w: failed to open transport", ErrConnection)
)

// Resource and driver errors
var (
	ErrBadResource    = fmt.Errorf("%w: malformed resource name", ErrConnection)
	ErrUnknownScheme  = fmt.Errorf("%w: unknown resource scheme", ErrConnection)
	ErrDriverConflict = errors.New("driver already registered")
)

// Command errors
var (
	ErrWriteFailed    = fmt.Errorf("%w: write failed", ErrCommand)
	ErrReadFailed     = fmt.Errorf("%w: read failed", ErrCommand)
	ErrSyntaxError    = fmt.Errorf("%w: instrument reported a syntax error", ErrCommand)
	ErrExecutionError = fmt.Errorf("%w: instrument reported an execution error", ErrCommand)
	ErrBadResponse    = fmt.Errorf("%w: unexpected response", ErrCommand)
)
