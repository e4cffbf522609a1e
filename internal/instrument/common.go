package instrument

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benchbus/benchbus/internal/bus"
)

// The IEEE-488.2 common commands every supported instrument answers. The
// facades expose these through thin wrappers so each one carries the same
// behavior.

// Identify returns the *IDN? response.
func Identify(s Session) (string, error) {
	return s.Query("*IDN?")
}

// Reset restores the instrument's power-up state.
func Reset(s Session) error {
	return s.Write("*RST")
}

// ClearStatus clears the instrument's status and error queues.
func ClearStatus(s Session) error {
	return s.Write("*CLS")
}

// SelfTest runs the instrument self-test. A zero result means pass; anything
// else is the instrument's failure code.
func SelfTest(s Session) (int, error) {
	resp, err := s.Query("*TST?")
	if err != nil {
		return 0, err
	}

	code, err := strconv.Atoi(strings.TrimSpace(resp))
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable self-test result %q", bus.ErrBadResponse, resp)
	}
	return code, nil
}

// StatusByte reads the *STB? status byte register.
func StatusByte(s Session) (int, error) {
	return queryInt(s, "*STB?")
}

// EventStatus reads and clears the *ESR? event status register.
func EventStatus(s Session) (int, error) {
	return queryInt(s, "*ESR?")
}

// Trigger issues a *TRG bus trigger.
func Trigger(s Session) error {
	return s.Write("*TRG")
}

func queryInt(s Session, cmd string) (int, error) {
	resp, err := s.Query(cmd)
	if err != nil {
		return 0, err
	}

	v, err := strconv.Atoi(strings.TrimSpace(resp))
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable %s response %q", bus.ErrBadResponse, cmd, resp)
	}
	return v, nil
}

// QueryFloat sends cmd and parses the reply as a single number. Instruments
// answer measurement queries in forms like "+1.2345E+0".
func QueryFloat(s Session, cmd string) (float64, error) {
	resp, err := s.Query(cmd)
	if err != nil {
		return 0, err
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(resp), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable %s response %q", bus.ErrBadResponse, cmd, resp)
	}
	return v, nil
}
