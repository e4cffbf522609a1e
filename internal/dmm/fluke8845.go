package dmm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benchbus/benchbus/internal/bus"
	"github.com/benchbus/benchbus/internal/instrument"
	"github.com/benchbus/benchbus/internal/validate"
)

const fluke8845Model = "Fluke 8845A"

// The 8845A speaks SCPI; the shared function tokens map onto its CONFigure
// subsystem names.
var fluke8845Functions = map[string]string{
	FuncVDC:   "VOLT:DC",
	FuncVAC:   "VOLT:AC",
	FuncADC:   "CURR:DC",
	FuncAAC:   "CURR:AC",
	FuncOhms:  "RES",
	"OHMS4":   "FRES",
	FuncFreq:  "FREQ",
	"PERIOD":  "PER",
	FuncCont:  "CONT",
	FuncDiode: "DIOD",
}

// Reading rates map onto integration time in power line cycles.
var fluke8845Rates = map[string]float64{
	"F": 0.2,
	"M": 1,
	"S": 10,
}

// Fluke8845 drives the Fluke 8845A/8846A 6.5 digit multimeter over its LAN
// SCPI port, RS-232 or GPIB. It has a single display path, so the secondary
// display operations report unsupported.
type Fluke8845 struct {
	sess instrument.Session

	// SCPI range and rate commands are per-function, so the facade has to
	// know which function is configured.
	function string
}

func NewFluke8845(opts instrument.ConnectOptions) *Fluke8845 {
	return &Fluke8845{
		sess: bus.NewSession(bus.SessionConfig{
			Resource: opts.ResourceString(),
			Timeout:  opts.Timeout,
			IDNMatch: matchFluke8845,
		}),
	}
}

func matchFluke8845(idn string) bool {
	return strings.Contains(idn, "FLUKE") &&
		(strings.Contains(idn, "8845") || strings.Contains(idn, "8846"))
}

func (d *Fluke8845) Connect() error    { return d.sess.Open() }
func (d *Fluke8845) Disconnect() error { return d.sess.Close() }
func (d *Fluke8845) Connected() bool   { return d.sess.Connected() }

func (d *Fluke8845) Identify() (string, error) {
	if !d.sess.Connected() {
		return "", bus.ErrNotConnected
	}
	return instrument.Identify(d.sess)
}

func (d *Fluke8845) Supports(cap instrument.Capability) bool {
	return false
}

// SetFunction configures the measurement function.
func (d *Fluke8845) SetFunction(name string) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	fn, err := validate.InSet("function", name, fluke8845FunctionNames())
	if err != nil {
		return err
	}

	if err := d.sess.Write("CONF:" + fluke8845Functions[fn]); err != nil {
		return err
	}
	d.function = fluke8845Functions[fn]
	return nil
}

func (d *Fluke8845) SetSecondaryFunction(name string) error {
	return instrument.Unsupported(fluke8845Model, "secondary display")
}

// SetRate selects the integration time: S, M or F, as tenths, one or ten
// power line cycles.
func (d *Fluke8845) SetRate(rate string) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := d.requireFunction("rate"); err != nil {
		return err
	}

	r, err := validate.InSet("rate", rate, []string{"S", "M", "F"})
	if err != nil {
		return err
	}
	return d.sess.Write(fmt.Sprintf("%s:NPLC %g", d.function, fluke8845Rates[r]))
}

// SetRange selects a fixed range by full-scale value in the function's base
// unit.
func (d *Fluke8845) SetRange(v float64) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := d.requireFunction("range"); err != nil {
		return err
	}
	return d.sess.Write(fmt.Sprintf("%s:RANG %G", d.function, v))
}

func (d *Fluke8845) SetAutoRange(on bool) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := d.requireFunction("autorange"); err != nil {
		return err
	}

	state := "OFF"
	if on {
		state = "ON"
	}
	return d.sess.Write(fmt.Sprintf("%s:RANG:AUTO %s", d.function, state))
}

func (d *Fluke8845) AutoRange() (bool, error) {
	if !d.sess.Connected() {
		return false, bus.ErrNotConnected
	}
	if err := d.requireFunction("autorange"); err != nil {
		return false, err
	}

	resp, err := d.sess.Query(d.function + ":RANG:AUTO?")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(resp) == "1", nil
}

// Primary triggers and returns a fresh reading.
func (d *Fluke8845) Primary() (float64, error) {
	if !d.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	return instrument.QueryFloat(d.sess, "READ?")
}

func (d *Fluke8845) Secondary() (float64, error) {
	return 0, instrument.Unsupported(fluke8845Model, "secondary display")
}

func (d *Fluke8845) Both() (float64, float64, error) {
	return 0, 0, instrument.Unsupported(fluke8845Model, "secondary display")
}

// PrimaryValue returns the last completed reading without retriggering.
func (d *Fluke8845) PrimaryValue() (float64, error) {
	if !d.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	return instrument.QueryFloat(d.sess, "FETC?")
}

func (d *Fluke8845) SecondaryValue() (float64, error) {
	return 0, instrument.Unsupported(fluke8845Model, "secondary display")
}

func (d *Fluke8845) Reset() error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	if err := instrument.Reset(d.sess); err != nil {
		return err
	}
	d.function = ""
	return nil
}

func (d *Fluke8845) ClearStatus() error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}
	return instrument.ClearStatus(d.sess)
}

func (d *Fluke8845) SelfTest() (int, error) {
	if !d.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	return instrument.SelfTest(d.sess)
}

func (d *Fluke8845) requireFunction(setting string) error {
	if d.function != "" {
		return nil
	}
	return &validate.Error{
		Setting: setting,
		Value:   "",
		Detail:  "measurement function must be configured first",
	}
}

func fluke8845FunctionNames() []string {
	names := make([]string, 0, len(fluke8845Functions))
	for name := range fluke8845Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
