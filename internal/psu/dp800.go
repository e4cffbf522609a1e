// Package psu provides a facade for bench power supplies.
package psu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benchbus/benchbus/internal/bus"
	"github.com/benchbus/benchbus/internal/instrument"
	"github.com/benchbus/benchbus/internal/validate"
)

const dp800Model = "Rigol DP800"

// channelLimit is the maximum programmable voltage and current for one
// output.
type channelLimit struct {
	volts float64
	amps  float64
}

// DP832 output ratings. The third channel is the low voltage logic rail.
var dp800Limits = map[int]channelLimit{
	1: {volts: 32, amps: 3.2},
	2: {volts: 32, amps: 3.2},
	3: {volts: 5.3, amps: 3.2},
}

// Measurement is one channel's measured output.
type Measurement struct {
	Volts float64
	Amps  float64
	Watts float64
}

// DP800 drives the Rigol DP800 series triple output supply over its LAN
// SCPI socket or USB serial port.
type DP800 struct {
	sess instrument.Session
}

func NewDP800(opts instrument.ConnectOptions) *DP800 {
	return &DP800{
		sess: bus.NewSession(bus.SessionConfig{
			Resource: opts.ResourceString(),
			Timeout:  opts.Timeout,
			IDNMatch: matchDP800,
		}),
	}
}

func matchDP800(idn string) bool {
	return strings.Contains(idn, "RIGOL") && strings.Contains(idn, "DP8")
}

func (p *DP800) Connect() error    { return p.sess.Open() }
func (p *DP800) Disconnect() error { return p.sess.Close() }
func (p *DP800) Connected() bool   { return p.sess.Connected() }

func (p *DP800) Identify() (string, error) {
	if !p.sess.Connected() {
		return "", bus.ErrNotConnected
	}
	return instrument.Identify(p.sess)
}

func (p *DP800) Supports(cap instrument.Capability) bool {
	return false
}

func (p *DP800) Channels() int { return len(dp800Limits) }

func (p *DP800) checkChannel(ch int) error {
	return validate.IntInRange("channel", ch, 1, len(dp800Limits))
}

// SetVoltage programs the channel output voltage.
func (p *DP800) SetVoltage(ch int, volts float64) error {
	if !p.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := p.checkChannel(ch); err != nil {
		return err
	}
	if err := validate.InRange("voltage", volts, 0, dp800Limits[ch].volts); err != nil {
		return err
	}
	return p.sess.Write(fmt.Sprintf(":SOUR%d:VOLT %G", ch, volts))
}

// Voltage returns the programmed (not measured) output voltage.
func (p *DP800) Voltage(ch int) (float64, error) {
	if !p.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	if err := p.checkChannel(ch); err != nil {
		return 0, err
	}
	return instrument.QueryFloat(p.sess, fmt.Sprintf(":SOUR%d:VOLT?", ch))
}

// SetCurrent programs the channel current limit.
func (p *DP800) SetCurrent(ch int, amps float64) error {
	if !p.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := p.checkChannel(ch); err != nil {
		return err
	}
	if err := validate.InRange("current", amps, 0, dp800Limits[ch].amps); err != nil {
		return err
	}
	return p.sess.Write(fmt.Sprintf(":SOUR%d:CURR %G", ch, amps))
}

// Current returns the programmed current limit.
func (p *DP800) Current(ch int) (float64, error) {
	if !p.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	if err := p.checkChannel(ch); err != nil {
		return 0, err
	}
	return instrument.QueryFloat(p.sess, fmt.Sprintf(":SOUR%d:CURR?", ch))
}

// Apply programs voltage and current in a single command.
func (p *DP800) Apply(ch int, volts, amps float64) error {
	if !p.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := p.checkChannel(ch); err != nil {
		return err
	}
	if err := validate.InRange("voltage", volts, 0, dp800Limits[ch].volts); err != nil {
		return err
	}
	if err := validate.InRange("current", amps, 0, dp800Limits[ch].amps); err != nil {
		return err
	}
	return p.sess.Write(fmt.Sprintf(":APPL CH%d,%G,%G", ch, volts, amps))
}

// MeasureVoltage returns the measured output voltage.
func (p *DP800) MeasureVoltage(ch int) (float64, error) {
	return p.measure(ch, "VOLT")
}

// MeasureCurrent returns the measured output current.
func (p *DP800) MeasureCurrent(ch int) (float64, error) {
	return p.measure(ch, "CURR")
}

// MeasurePower returns the measured output power.
func (p *DP800) MeasurePower(ch int) (float64, error) {
	return p.measure(ch, "POWE")
}

func (p *DP800) measure(ch int, quantity string) (float64, error) {
	if !p.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	if err := p.checkChannel(ch); err != nil {
		return 0, err
	}
	return instrument.QueryFloat(p.sess, fmt.Sprintf(":MEAS:%s? CH%d", quantity, ch))
}

// MeasureAll returns voltage, current and power in one query.
func (p *DP800) MeasureAll(ch int) (Measurement, error) {
	if !p.sess.Connected() {
		return Measurement{}, bus.ErrNotConnected
	}
	if err := p.checkChannel(ch); err != nil {
		return Measurement{}, err
	}

	resp, err := p.sess.Query(fmt.Sprintf(":MEAS:ALL? CH%d", ch))
	if err != nil {
		return Measurement{}, err
	}

	parts := strings.Split(resp, ",")
	if len(parts) != 3 {
		return Measurement{}, fmt.Errorf("%w: expected three readings, got %q", bus.ErrBadResponse, resp)
	}

	var m Measurement
	for i, dst := range []*float64{&m.Volts, &m.Amps, &m.Watts} {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return Measurement{}, fmt.Errorf("%w: unparseable reading %q", bus.ErrBadResponse, parts[i])
		}
		*dst = v
	}
	return m, nil
}

// SetOutput switches the channel output on or off.
func (p *DP800) SetOutput(ch int, on bool) error {
	if !p.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := p.checkChannel(ch); err != nil {
		return err
	}

	state := "OFF"
	if on {
		state = "ON"
	}
	return p.sess.Write(fmt.Sprintf(":OUTP CH%d,%s", ch, state))
}

// Output reports whether the channel output is on.
func (p *DP800) Output(ch int) (bool, error) {
	if !p.sess.Connected() {
		return false, bus.ErrNotConnected
	}
	if err := p.checkChannel(ch); err != nil {
		return false, err
	}

	resp, err := p.sess.Query(fmt.Sprintf(":OUTP? CH%d", ch))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(resp) == "ON", nil
}

// SetOverVoltage programs the channel over-voltage protection level.
func (p *DP800) SetOverVoltage(ch int, volts float64) error {
	if !p.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := p.checkChannel(ch); err != nil {
		return err
	}
	if err := validate.InRange("over-voltage level", volts, 0, dp800Limits[ch].volts+1); err != nil {
		return err
	}
	return p.sess.Write(fmt.Sprintf(":SOUR%d:VOLT:PROT %G", ch, volts))
}

// SetOverVoltageEnabled arms or disarms over-voltage protection.
func (p *DP800) SetOverVoltageEnabled(ch int, on bool) error {
	if !p.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := p.checkChannel(ch); err != nil {
		return err
	}

	state := "OFF"
	if on {
		state = "ON"
	}
	return p.sess.Write(fmt.Sprintf(":SOUR%d:VOLT:PROT:STAT %s", ch, state))
}

// SetOverCurrent programs the channel over-current protection level.
func (p *DP800) SetOverCurrent(ch int, amps float64) error {
	if !p.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := p.checkChannel(ch); err != nil {
		return err
	}
	if err := validate.InRange("over-current level", amps, 0, dp800Limits[ch].amps+0.1); err != nil {
		return err
	}
	return p.sess.Write(fmt.Sprintf(":SOUR%d:CURR:PROT %G", ch, amps))
}

// SetOverCurrentEnabled arms or disarms over-current protection.
func (p *DP800) SetOverCurrentEnabled(ch int, on bool) error {
	if !p.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := p.checkChannel(ch); err != nil {
		return err
	}

	state := "OFF"
	if on {
		state = "ON"
	}
	return p.sess.Write(fmt.Sprintf(":SOUR%d:CURR:PROT:STAT %s", ch, state))
}

func (p *DP800) Reset() error {
	if !p.sess.Connected() {
		return bus.ErrNotConnected
	}
	return instrument.Reset(p.sess)
}

func (p *DP800) SelfTest() (int, error) {
	if !p.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	return instrument.SelfTest(p.sess)
}
