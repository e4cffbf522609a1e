package bus

import (
	"fmt"
	"strings"
)

// Resource identifies one instrument endpoint on the bus. The printable form
// is "<scheme>::<target>", e.g. "gpib::/dev/ttyUSB0::5", "serial::/dev/ttyS0"
// or "tcp::192.168.1.100:5025".
type Resource struct {
	Scheme string
	Target string
}

// ParseResource splits a resource name into its scheme and driver-specific
// target.
func ParseResource(name string) (Resource, error) {
	parts := strings.SplitN(name, "::", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Resource{}, fmt.Errorf("%w: %q", ErrBadResource, name)
	}

	return Resource{
		Scheme: strings.ToLower(parts[0]),
		Target: parts[1],
	}, nil
}

// String returns the printable resource name.
func (r Resource) String() string {
	return r.Scheme + "::" + r.Target
}
