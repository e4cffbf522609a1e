package bus

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	goserial "github.com/jacobsa/go-serial/serial"
)

// Serial port defaults for bench instruments (9600 8N1).
const (
	serialBaudRate = 9600
	serialDataBits = 8
	serialStopBits = 1
)

// serialDriver opens RS-232 transports. The target is the device path, e.g.
// "serial::/dev/ttyUSB0".
type serialDriver struct{}

func (d *serialDriver) Open(target string, timeout time.Duration) (Transport, error) {
	options := goserial.OpenOptions{
		PortName:              target,
		BaudRate:              serialBaudRate,
		DataBits:              serialDataBits,
		StopBits:              serialStopBits,
		ParityMode:            goserial.PARITY_NONE,
		InterCharacterTimeout: uint(timeout / time.Millisecond),
		MinimumReadSize:       0,
	}

	port, err := goserial.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", target, err)
	}

	return &serialTransport{
		port:   port,
		reader: bufio.NewReader(port),
	}, nil
}

// Enumerate lists the usual USB-serial device paths for auto-discovery.
func (d *serialDriver) Enumerate() []Resource {
	var resources []Resource
	for _, pattern := range []string{"/dev/ttyUSB*", "/dev/ttyACM*"} {
		paths, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, path := range paths {
			resources = append(resources, Resource{Scheme: "serial", Target: path})
		}
	}
	return resources
}

type serialTransport struct {
	port   io.ReadWriteCloser
	reader *bufio.Reader
}

func (t *serialTransport) WriteString(cmd string) error {
	if !strings.HasSuffix(cmd, "\n") {
		cmd += "\n"
	}
	_, err := t.port.Write([]byte(cmd))
	return err
}

func (t *serialTransport) Query(cmd string) (string, error) {
	if err := t.WriteString(cmd); err != nil {
		return "", err
	}
	return t.ReadLine()
}

func (t *serialTransport) ReadLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}

func init() {
	MustRegister("serial", &serialDriver{})
}
