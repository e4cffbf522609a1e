package bus

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

// tcpDriver opens raw SCPI socket transports. The target is "host:port",
// e.g. "tcp::192.168.1.100:5025".
type tcpDriver struct{}

func (d *tcpDriver) Open(target string, timeout time.Duration) (Transport, error) {
	conn, err := net.DialTimeout("tcp", target, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}

	return &tcpTransport{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: timeout,
	}, nil
}

type tcpTransport struct {
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
}

func (t *tcpTransport) WriteString(cmd string) error {
	if !strings.HasSuffix(cmd, "\n") {
		cmd += "\n"
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
		return err
	}
	_, err := t.conn.Write([]byte(cmd))
	return err
}

func (t *tcpTransport) Query(cmd string) (string, error) {
	if err := t.WriteString(cmd); err != nil {
		return "", err
	}
	return t.ReadLine()
}

func (t *tcpTransport) ReadLine() (string, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
		return "", err
	}
	line, err := t.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}

func init() {
	MustRegister("tcp", &tcpDriver{})
}
