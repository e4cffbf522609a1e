package bus

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gotmc/prologix"
	"github.com/gotmc/prologix/driver/vcp"
)

// gpibDriver opens GPIB transports through a Prologix USB controller. The
// target is "<controller-port>::<address>", e.g.
// "gpib::/dev/ttyUSB0::5" for the instrument at GPIB address 5.
type gpibDriver struct{}

func (d *gpibDriver) Open(target string, timeout time.Duration) (Transport, error) {
	parts := strings.SplitN(target, "::", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("gpib target must be <port>::<address>, got %q", target)
	}

	addr, err := strconv.Atoi(parts[1])
	if err != nil || addr < 0 || addr > 30 {
		return nil, fmt.Errorf("invalid gpib address %q", parts[1])
	}

	port, err := vcp.NewVCP(parts[0])
	if err != nil {
		return nil, fmt.Errorf("failed to open controller port %s: %w", parts[0], err)
	}

	ctrl, err := prologix.NewController(port, addr, true)
	if err != nil {
		port.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to address gpib device %d: %w", addr, err)
	}

	return &gpibTransport{ctrl: ctrl, port: port, timeout: timeout}, nil
}

type gpibTransport struct {
	ctrl    *prologix.Controller
	port    *vcp.VCP
	timeout time.Duration
}

// commandContext bounds one controller exchange by the session timeout.
func (t *gpibTransport) commandContext() (context.Context, context.CancelFunc) {
	if t.timeout > 0 {
		return context.WithTimeout(context.Background(), t.timeout)
	}
	return context.WithCancel(context.Background())
}

func (t *gpibTransport) WriteString(cmd string) error {
	ctx, cancel := t.commandContext()
	defer cancel()
	return t.ctrl.Command(ctx, cmd)
}

func (t *gpibTransport) Query(cmd string) (string, error) {
	ctx, cancel := t.commandContext()
	defer cancel()

	resp, err := t.ctrl.Query(ctx, cmd)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

func (t *gpibTransport) Close() error {
	// Hand the instrument back to its front panel before dropping the port.
	if err := t.ctrl.FrontPanel(true); err != nil {
		t.port.Close() //nolint:errcheck
		return err
	}
	if err := t.port.Flush(); err != nil {
		t.port.Close() //nolint:errcheck
		return err
	}
	return t.port.Close()
}

func init() {
	MustRegister("gpib", &gpibDriver{})
}
