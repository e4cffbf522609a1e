package instrument

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/benchbus/benchbus/internal/bus"
)

// ValueFormat selects how an instrument reports numeric settings back.
type ValueFormat int

const (
	// FormatBare means replies are a plain number, e.g. "1000.0".
	FormatBare ValueFormat = iota
	// FormatTagged means replies carry a trailing unit, e.g. "1000HZ".
	FormatTagged
)

// Quantity is a numeric setting value together with the unit the instrument
// reported it in. Unit is empty for bare-format instruments.
type Quantity struct {
	Magnitude float64
	Unit      string
}

func (q Quantity) String() string {
	if q.Unit == "" {
		return strconv.FormatFloat(q.Magnitude, 'g', -1, 64)
	}
	return fmt.Sprintf("%g %s", q.Magnitude, q.Unit)
}

var taggedValueRe = regexp.MustCompile(`^([-+]?[0-9]*\.?[0-9]+(?:[eE][-+]?[0-9]+)?)\s*([A-Za-z%]*)$`)

// ParseQuantity parses an instrument reply in the given format. Tagged
// replies split the leading number from the unit suffix; bare replies must
// be a number alone.
func ParseQuantity(raw string, format ValueFormat) (Quantity, error) {
	raw = strings.TrimSpace(raw)

	if format == FormatBare {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Quantity{}, fmt.Errorf("%w: unparseable value %q", bus.ErrBadResponse, raw)
		}
		return Quantity{Magnitude: v}, nil
	}

	m := taggedValueRe.FindStringSubmatch(raw)
	if m == nil {
		return Quantity{}, fmt.Errorf("%w: unparseable tagged value %q", bus.ErrBadResponse, raw)
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: unparseable tagged value %q", bus.ErrBadResponse, raw)
	}
	return Quantity{Magnitude: v, Unit: m[2]}, nil
}

// ParseKeyValues decodes a comma-separated key,value reply such as the
// Siglent "WVTP,SINE,FRQ,1000HZ,AMP,4V" form. A header before the first
// space (e.g. "C1:BSWV") is dropped. A trailing key with no value maps to
// the empty string.
func ParseKeyValues(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, ' '); i >= 0 {
		raw = raw[i+1:]
	}

	fields := strings.Split(raw, ",")
	out := make(map[string]string, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		key := strings.TrimSpace(fields[i])
		if key == "" {
			continue
		}
		value := ""
		if i+1 < len(fields) {
			value = strings.TrimSpace(fields[i+1])
		}
		out[key] = value
	}
	return out
}
