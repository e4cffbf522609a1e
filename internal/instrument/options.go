package instrument

import (
	"fmt"
	"time"
)

// ConnectOptions describes where an instrument lives. Resource wins when
// set; otherwise the first populated transport field is used, and when all
// are empty the bus is probed for a matching instrument.
type ConnectOptions struct {
	Resource    string        `mapstructure:"resource"`
	GPIBPort    string        `mapstructure:"gpib-port"`
	GPIBAddress int           `mapstructure:"gpib-address"`
	SerialPort  string        `mapstructure:"serial-port"`
	TCPAddress  string        `mapstructure:"tcp-address"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ResourceString collapses the options into a single resource name, or ""
// when discovery should be used.
func (o ConnectOptions) ResourceString() string {
	switch {
	case o.Resource != "":
		return o.Resource
	case o.GPIBPort != "":
		return fmt.Sprintf("gpib::%s::%d", o.GPIBPort, o.GPIBAddress)
	case o.SerialPort != "":
		return "serial::" + o.SerialPort
	case o.TCPAddress != "":
		return "tcp::" + o.TCPAddress
	}
	return ""
}
