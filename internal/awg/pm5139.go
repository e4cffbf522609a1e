package awg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benchbus/benchbus/internal/bus"
	"github.com/benchbus/benchbus/internal/instrument"
	"github.com/benchbus/benchbus/internal/validate"
)

const pm5139Model = "Philips PM5139"

// The PM5139 names some shapes differently; the shared tokens map onto its
// own command words.
var pm5139Waveforms = map[string]string{
	WaveSine:   "SINE",
	WaveSquare: "SQUARE",
	WaveRamp:   "TRNGLE",
	WavePulse:  "POSPULSE",
	WaveArb:    "ARB",
	WaveDC:     "DC",
}

var pm5139Caps = map[instrument.Capability]bool{
	instrument.CapDutyCycle:     true,
	instrument.CapLoadImpedance: true,
}

// PM5139 drives the Philips PM5139 single channel function generator over
// RS-232 or GPIB. It reports settings as bare numbers, has no adjustable
// phase, and no pulse shape control.
type PM5139 struct {
	sess   instrument.Session
	limits *Limits
	format instrument.ValueFormat
}

func NewPM5139(opts instrument.ConnectOptions) *PM5139 {
	g := &PM5139{
		sess: bus.NewSession(bus.SessionConfig{
			Resource: opts.ResourceString(),
			Timeout:  opts.Timeout,
			IDNMatch: matchPM5139,
		}),
		limits: NewLimits(),
		format: instrument.FormatBare,
	}

	// The instrument tops out at 20 MHz.
	g.limits.maxFrequency = 20e6
	return g
}

func matchPM5139(idn string) bool {
	return strings.Contains(idn, "PM5139") || strings.Contains(idn, "PM 5139")
}

func (g *PM5139) Connect() error    { return g.sess.Open() }
func (g *PM5139) Disconnect() error { return g.sess.Close() }
func (g *PM5139) Connected() bool   { return g.sess.Connected() }

func (g *PM5139) Identify() (string, error) {
	if !g.sess.Connected() {
		return "", bus.ErrNotConnected
	}
	return instrument.Identify(g.sess)
}

func (g *PM5139) Supports(cap instrument.Capability) bool {
	return pm5139Caps[cap]
}

func (g *PM5139) Channels() int   { return 1 }
func (g *PM5139) Limits() *Limits { return g.limits }

func (g *PM5139) checkChannel(ch int) error {
	return validate.IntInRange("channel", ch, 1, 1)
}

func (g *PM5139) SetWaveform(ch int, wave string) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}

	w, err := validate.InSet("waveform", wave, pm5139WaveformNames())
	if err != nil {
		return err
	}
	return g.sess.Write("WAVEFORM " + pm5139Waveforms[w])
}

func (g *PM5139) SetFrequency(ch int, hz float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := g.limits.CheckFrequency(hz); err != nil {
		return err
	}
	return g.sess.Write(fmt.Sprintf("FREQ %G", hz))
}

func (g *PM5139) Frequency(ch int) (instrument.Quantity, error) {
	return g.queryBare(ch, "FREQ?")
}

func (g *PM5139) SetAmplitude(ch int, volts float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := g.limits.CheckAmplitude(volts); err != nil {
		return err
	}
	return g.sess.Write(fmt.Sprintf("AMPLTUDE %G", volts))
}

func (g *PM5139) Amplitude(ch int) (instrument.Quantity, error) {
	return g.queryBare(ch, "AMPLTUDE?")
}

func (g *PM5139) SetOffset(ch int, volts float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := g.limits.CheckOffset(volts); err != nil {
		return err
	}
	return g.sess.Write(fmt.Sprintf("DCOFFSET %G", volts))
}

func (g *PM5139) Offset(ch int) (instrument.Quantity, error) {
	return g.queryBare(ch, "DCOFFSET?")
}

// SetPhase accepts only zero: the PM5139 has no start phase control.
func (g *PM5139) SetPhase(ch int, degrees float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if degrees == 0 {
		return nil
	}
	return instrument.Unsupported(pm5139Model, "phase control")
}

func (g *PM5139) SetDutyCycle(ch int, percent float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := validate.InRange("duty cycle", percent, 0, 100); err != nil {
		return err
	}
	return g.sess.Write(fmt.Sprintf("DUTYCYCLE %G", percent))
}

func (g *PM5139) DutyCycle(ch int) (instrument.Quantity, error) {
	return g.queryBare(ch, "DUTYCYCLE?")
}

func (g *PM5139) SetSymmetry(ch int, percent float64) error {
	return instrument.Unsupported(pm5139Model, "ramp symmetry")
}

// SetLowImpedance selects the 50 ohm output when on, high impedance when
// off.
func (g *PM5139) SetLowImpedance(on bool) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}

	state := "OFF"
	if on {
		state = "ON"
	}
	return g.sess.Write("LOWIMP " + state)
}

// SetOutput switches both the AC and DC output paths together.
func (g *PM5139) SetOutput(ch int, on bool) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}

	if on {
		if err := g.sess.Write("ACON"); err != nil {
			return err
		}
		return g.sess.Write("DCON")
	}
	if err := g.sess.Write("ACOFF"); err != nil {
		return err
	}
	return g.sess.Write("DCOFF")
}

// Output reports the AC output path state, read from the learn string.
func (g *PM5139) Output(ch int) (bool, error) {
	if !g.sess.Connected() {
		return false, bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return false, err
	}

	settings, err := g.Settings()
	if err != nil {
		return false, err
	}
	return settings["AC"] == "ON", nil
}

// Settings reads the instrument's full state via *LRN? and returns it as a
// keyword map. The learn string is a semicolon-separated list of
// "KEYWORD value" entries.
func (g *PM5139) Settings() (map[string]string, error) {
	if !g.sess.Connected() {
		return nil, bus.ErrNotConnected
	}

	resp, err := g.sess.Query("*LRN?")
	if err != nil {
		return nil, err
	}

	out := map[string]string{}
	for _, entry := range strings.Split(resp, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if i := strings.IndexByte(entry, ' '); i >= 0 {
			out[entry[:i]] = strings.TrimSpace(entry[i+1:])
		} else {
			out[entry] = ""
		}
	}
	return out, nil
}

// ConfigureWaveform applies several settings in one call, one command per
// setting, stopping at the first failure.
func (g *PM5139) ConfigureWaveform(ch int, cfg WaveformConfig) error {
	return applyWaveformConfig(g, ch, cfg)
}

func (g *PM5139) Reset() error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	return instrument.Reset(g.sess)
}

func (g *PM5139) queryBare(ch int, cmd string) (instrument.Quantity, error) {
	if !g.sess.Connected() {
		return instrument.Quantity{}, bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return instrument.Quantity{}, err
	}

	resp, err := g.sess.Query(cmd)
	if err != nil {
		return instrument.Quantity{}, err
	}
	return instrument.ParseQuantity(resp, g.format)
}

func pm5139WaveformNames() []string {
	names := make([]string, 0, len(pm5139Waveforms))
	for name := range pm5139Waveforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
