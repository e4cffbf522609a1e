package bus

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// DefaultTimeout is the session timeout used when none is configured.
const DefaultTimeout = 5 * time.Second

// SessionConfig describes how a Session resolves and talks to an instrument.
type SessionConfig struct {
	// Resource is the instrument's resource name. Empty means auto-discover
	// the first device on the bus whose identity matches IDNMatch.
	Resource string
	// Timeout is the fixed per-operation timeout, enforced by the transport.
	Timeout time.Duration
	// IDNMatch, when set, is checked against the *IDN? reply at open time.
	// It is required for auto-discovery.
	IDNMatch func(idn string) bool
	// Prompts enables decoding of the "=>" / "?>" / "!>" prompt lines that
	// some serial instruments emit after every command.
	Prompts bool
}

// Session owns the open channel to one instrument. It holds no buffering of
// its own; all framing belongs to the transport. A Session is not safe for
// concurrent use.
type Session struct {
	cfg      SessionConfig
	registry *Registry
	tr       Transport
	resource Resource
	identity string
}

// NewSession creates a Session in the disconnected state.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Session{cfg: cfg, registry: defaultRegistry}
}

// Open resolves the configured identity to a live transport. Calling Open on
// an already-open session is a no-op.
func (s *Session) Open() error {
	if s.tr != nil {
		return nil
	}

	if s.cfg.Resource == "" {
		tr, res, idn, err := discover(s.registry, s.cfg.IDNMatch, s.cfg.Timeout)
		if err != nil {
			return err
		}
		s.tr = tr
		s.resource = res
		s.identity = idn
		log.Printf("connected to %s at %s", idn, res)
		return nil
	}

	res, err := ParseResource(s.cfg.Resource)
	if err != nil {
		return err
	}

	tr, err := s.registry.Open(res, s.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOpenFailed, res, err)
	}

	idn, err := queryIdentity(tr)
	if err != nil {
		tr.Close() //nolint:errcheck
		return fmt.Errorf("%w: %s: %v", ErrOpenFailed, res, err)
	}

	if s.cfg.IDNMatch != nil && !s.cfg.IDNMatch(idn) {
		tr.Close() //nolint:errcheck
		return fmt.Errorf("%w: device at %s identified as %q", ErrIdentityMismatch, res, idn)
	}

	s.tr = tr
	s.resource = res
	s.identity = idn
	log.Printf("connected to %s at %s", idn, res)
	return nil
}

// Close releases the transport. Closing a closed session is a no-op.
func (s *Session) Close() error {
	if s.tr == nil {
		return nil
	}

	err := s.tr.Close()
	s.tr = nil
	if err != nil {
		return fmt.Errorf("%w: close: %v", ErrConnection, err)
	}
	return nil
}

// Connected reports whether the session holds a live transport.
func (s *Session) Connected() bool {
	return s.tr != nil
}

// Resource returns the resolved resource name, or "" when disconnected.
func (s *Session) Resource() string {
	if s.tr == nil {
		return ""
	}
	return s.resource.String()
}

// Identity returns the *IDN? string captured at open time.
func (s *Session) Identity() string {
	return s.identity
}

// Write sends a command with no reply expected.
func (s *Session) Write(cmd string) error {
	if s.tr == nil {
		return ErrNotConnected
	}

	if err := s.tr.WriteString(cmd); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrWriteFailed, cmd, err)
	}

	if s.cfg.Prompts {
		return s.readPrompt(cmd)
	}
	return nil
}

// Query sends a command and reads one delimited text reply.
func (s *Session) Query(cmd string) (string, error) {
	if s.tr == nil {
		return "", ErrNotConnected
	}

	resp, err := s.tr.Query(cmd)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrReadFailed, cmd, err)
	}

	resp = strings.TrimSpace(resp)
	if s.cfg.Prompts {
		resp, err = decodePrompt(resp, cmd)
		if err != nil {
			return "", err
		}
	}
	return resp, nil
}

// CheckAlive issues a benign identity query and reports liveness. A failure
// here is not an error; it just means the instrument did not answer.
func (s *Session) CheckAlive() bool {
	if s.tr == nil {
		return false
	}

	idn, err := s.tr.Query("*IDN?")
	return err == nil && strings.TrimSpace(idn) != ""
}

// readPrompt consumes the prompt line an instrument emits after a write and
// converts error prompts into command errors.
func (s *Session) readPrompt(cmd string) error {
	lr, ok := s.tr.(LineReader)
	if !ok {
		return nil
	}

	line, err := lr.ReadLine()
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrReadFailed, cmd, err)
	}

	_, err = decodePrompt(strings.TrimSpace(line), cmd)
	return err
}

// decodePrompt strips the ok prompt from a reply and maps the error prompts
// onto the command error taxonomy.
func decodePrompt(text, cmd string) (string, error) {
	switch {
	case strings.HasPrefix(text, "?>"):
		return "", fmt.Errorf("%w: %q: instrument returned %q", ErrSyntaxError, cmd, text)
	case strings.HasPrefix(text, "!>"):
		return "", fmt.Errorf("%w: %q: instrument returned %q", ErrExecutionError, cmd, text)
	case strings.HasPrefix(text, "=>"):
		return strings.TrimSpace(strings.TrimPrefix(text, "=>")), nil
	}
	return text, nil
}

// queryIdentity fetches the *IDN? string from a freshly opened transport.
func queryIdentity(tr Transport) (string, error) {
	idn, err := tr.Query("*IDN?")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(idn), nil
}
