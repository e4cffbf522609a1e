package bus

import "time"

// Transport is a live, message-based channel to one instrument. Commands and
// replies are newline-terminated ASCII; framing and timeouts belong to the
// transport, not to the Session above it.
type Transport interface {
	// WriteString sends one command with no reply expected.
	WriteString(cmd string) error
	// Query sends one command and reads one delimited reply.
	Query(cmd string) (string, error)
	// Close releases the underlying handle.
	Close() error
}

// LineReader is implemented by transports that can read an unsolicited line,
// such as the prompt lines some serial instruments emit after every command.
type LineReader interface {
	ReadLine() (string, error)
}

// Driver opens transports for one resource scheme.
type Driver interface {
	Open(target string, timeout time.Duration) (Transport, error)
}

// Enumerator is implemented by drivers that can list candidate resources for
// auto-discovery.
type Enumerator interface {
	Enumerate() []Resource
}
