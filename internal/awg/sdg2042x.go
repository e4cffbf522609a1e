package awg

import (
	"fmt"
	"strings"

	"github.com/benchbus/benchbus/internal/bus"
	"github.com/benchbus/benchbus/internal/instrument"
	"github.com/benchbus/benchbus/internal/validate"
)

const sdg2042xModel = "Siglent SDG2042X"

var (
	sdg2042xWaveforms = []string{
		WaveSine, WaveSquare, WaveRamp, WavePulse, WaveNoise,
		WaveArb, WaveDC, WavePRBS, WaveIQ,
	}

	sdg2042xCaps = map[instrument.Capability]bool{
		instrument.CapDutyCycle:     true,
		instrument.CapSymmetry:      true,
		instrument.CapPulseShape:    true,
		instrument.CapArbitrary:     true,
		instrument.CapPhase:         true,
		instrument.CapLoadImpedance: true,
	}
)

// SDG2042X drives the Siglent SDG2042X two channel generator, usually over
// its LAN SCPI socket. Replies carry units ("1000HZ"), so queried values
// come back tagged.
type SDG2042X struct {
	sess   instrument.Session
	limits *Limits
	format instrument.ValueFormat
}

func NewSDG2042X(opts instrument.ConnectOptions) *SDG2042X {
	return &SDG2042X{
		sess: bus.NewSession(bus.SessionConfig{
			Resource: opts.ResourceString(),
			Timeout:  opts.Timeout,
			IDNMatch: matchSDG2042X,
		}),
		limits: NewLimits(),
		format: instrument.FormatTagged,
	}
}

func matchSDG2042X(idn string) bool {
	return strings.Contains(idn, "SDG2042X")
}

func (g *SDG2042X) Connect() error    { return g.sess.Open() }
func (g *SDG2042X) Disconnect() error { return g.sess.Close() }
func (g *SDG2042X) Connected() bool   { return g.sess.Connected() }

func (g *SDG2042X) Identify() (string, error) {
	if !g.sess.Connected() {
		return "", bus.ErrNotConnected
	}
	return instrument.Identify(g.sess)
}

func (g *SDG2042X) Supports(cap instrument.Capability) bool {
	return sdg2042xCaps[cap]
}

func (g *SDG2042X) Channels() int   { return 2 }
func (g *SDG2042X) Limits() *Limits { return g.limits }

func (g *SDG2042X) checkChannel(ch int) error {
	return validate.IntInRange("channel", ch, 1, 2)
}

// setBasicWave sends one C<n>:BSWV parameter. Callers have already checked
// the connection and channel.
func (g *SDG2042X) setBasicWave(ch int, param, value string) error {
	return g.sess.Write(fmt.Sprintf("C%d:BSWV %s,%s", ch, param, value))
}

// queryBasicWave reads the named C<n>:BSWV? field as a tagged quantity.
func (g *SDG2042X) queryBasicWave(ch int, key string) (instrument.Quantity, error) {
	params, err := g.BasicWaveSettings(ch)
	if err != nil {
		return instrument.Quantity{}, err
	}

	raw, ok := params[key]
	if !ok {
		return instrument.Quantity{}, fmt.Errorf("%w: no %s field in basic wave reply", bus.ErrBadResponse, key)
	}
	return instrument.ParseQuantity(raw, g.format)
}

// BasicWaveSettings returns the full C<n>:BSWV? parameter map.
func (g *SDG2042X) BasicWaveSettings(ch int) (map[string]string, error) {
	if !g.sess.Connected() {
		return nil, bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return nil, err
	}

	resp, err := g.sess.Query(fmt.Sprintf("C%d:BSWV?", ch))
	if err != nil {
		return nil, err
	}
	return instrument.ParseKeyValues(resp), nil
}

func (g *SDG2042X) SetWaveform(ch int, wave string) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}

	w, err := validate.InSet("waveform", wave, sdg2042xWaveforms)
	if err != nil {
		return err
	}
	return g.sess.Write(fmt.Sprintf("C%d:BSWV WVTP,%s", ch, w))
}

func (g *SDG2042X) SetFrequency(ch int, hz float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := g.limits.CheckFrequency(hz); err != nil {
		return err
	}
	return g.setBasicWave(ch, "FRQ", fmt.Sprintf("%G", hz))
}

func (g *SDG2042X) Frequency(ch int) (instrument.Quantity, error) {
	return g.queryBasicWave(ch, "FRQ")
}

func (g *SDG2042X) SetAmplitude(ch int, volts float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := g.limits.CheckAmplitude(volts); err != nil {
		return err
	}
	return g.setBasicWave(ch, "AMP", fmt.Sprintf("%G", volts))
}

func (g *SDG2042X) Amplitude(ch int) (instrument.Quantity, error) {
	return g.queryBasicWave(ch, "AMP")
}

func (g *SDG2042X) SetOffset(ch int, volts float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := g.limits.CheckOffset(volts); err != nil {
		return err
	}
	return g.setBasicWave(ch, "OFST", fmt.Sprintf("%G", volts))
}

func (g *SDG2042X) Offset(ch int) (instrument.Quantity, error) {
	return g.queryBasicWave(ch, "OFST")
}

func (g *SDG2042X) SetPhase(ch int, degrees float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := g.limits.CheckPhase(degrees); err != nil {
		return err
	}
	return g.setBasicWave(ch, "PHSE", fmt.Sprintf("%G", degrees))
}

func (g *SDG2042X) Phase(ch int) (instrument.Quantity, error) {
	return g.queryBasicWave(ch, "PHSE")
}

func (g *SDG2042X) SetDutyCycle(ch int, percent float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := validate.InRange("duty cycle", percent, 0, 100); err != nil {
		return err
	}
	return g.setBasicWave(ch, "DUTY", fmt.Sprintf("%G", percent))
}

func (g *SDG2042X) SetSymmetry(ch int, percent float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := validate.InRange("symmetry", percent, 0, 100); err != nil {
		return err
	}
	return g.setBasicWave(ch, "SYM", fmt.Sprintf("%G", percent))
}

// SetPulseWidth sets the pulse width in seconds.
func (g *SDG2042X) SetPulseWidth(ch int, seconds float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := validate.InRange("pulse width", seconds, 0, 1e6); err != nil {
		return err
	}
	return g.setBasicWave(ch, "WIDTH", fmt.Sprintf("%G", seconds))
}

// SetRiseTime sets the pulse rise time in seconds.
func (g *SDG2042X) SetRiseTime(ch int, seconds float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := validate.InRange("rise time", seconds, 0, 1e6); err != nil {
		return err
	}
	return g.setBasicWave(ch, "RISE", fmt.Sprintf("%G", seconds))
}

// SetFallTime sets the pulse fall time in seconds.
func (g *SDG2042X) SetFallTime(ch int, seconds float64) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := validate.InRange("fall time", seconds, 0, 1e6); err != nil {
		return err
	}
	return g.setBasicWave(ch, "FALL", fmt.Sprintf("%G", seconds))
}

func (g *SDG2042X) SetOutput(ch int, on bool) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}

	state := "OFF"
	if on {
		state = "ON"
	}
	return g.sess.Write(fmt.Sprintf("C%d:OUTP %s", ch, state))
}

// Output reports whether the channel output is on. The reply looks like
// "C1:OUTP ON,LOAD,HZ,PLRT,NOR".
func (g *SDG2042X) Output(ch int) (bool, error) {
	if !g.sess.Connected() {
		return false, bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return false, err
	}

	resp, err := g.sess.Query(fmt.Sprintf("C%d:OUTP?", ch))
	if err != nil {
		return false, err
	}

	resp = strings.TrimSpace(resp)
	if i := strings.IndexByte(resp, ' '); i >= 0 {
		resp = resp[i+1:]
	}
	return strings.HasPrefix(resp, "ON"), nil
}

// SetLoadImpedance sets the expected output load in ohms, 50 to 100000, or
// high impedance when hiZ is true.
func (g *SDG2042X) SetLoadImpedance(ch int, ohms float64, hiZ bool) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}

	if hiZ {
		return g.sess.Write(fmt.Sprintf("C%d:OUTP LOAD,HZ", ch))
	}
	if err := validate.InRange("load impedance", ohms, 50, 100000); err != nil {
		return err
	}
	return g.sess.Write(fmt.Sprintf("C%d:OUTP LOAD,%G", ch, ohms))
}

// SelectArbByIndex loads a built-in arbitrary waveform by its slot number.
func (g *SDG2042X) SelectArbByIndex(ch, index int) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if err := validate.IntInRange("arb index", index, 1, 24); err != nil {
		return err
	}
	return g.sess.Write(fmt.Sprintf("C%d:ARWV INDEX,%d", ch, index))
}

// SelectArbByName loads an arbitrary waveform by name.
func (g *SDG2042X) SelectArbByName(ch int, name string) error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	if err := g.checkChannel(ch); err != nil {
		return err
	}
	if name == "" {
		return &validate.Error{Setting: "arb name", Value: "", Detail: "must not be empty"}
	}
	return g.sess.Write(fmt.Sprintf("C%d:ARWV NAME,%q", ch, name))
}

// ArbEntry is one stored arbitrary waveform: its memory slot and name.
type ArbEntry struct {
	Slot string
	Name string
}

// ListWaveforms returns the stored arbitrary waveform table from STL?.
func (g *SDG2042X) ListWaveforms() ([]ArbEntry, error) {
	if !g.sess.Connected() {
		return nil, bus.ErrNotConnected
	}

	resp, err := g.sess.Query("STL?")
	if err != nil {
		return nil, err
	}

	// Reply form: "STL M10, ExpFal, M100, ECG14, ..."
	resp = strings.TrimSpace(resp)
	if i := strings.IndexByte(resp, ' '); i >= 0 {
		resp = resp[i+1:]
	}

	fields := strings.Split(resp, ",")
	entries := make([]ArbEntry, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		entries = append(entries, ArbEntry{
			Slot: strings.TrimSpace(fields[i]),
			Name: strings.TrimSpace(fields[i+1]),
		})
	}
	return entries, nil
}

// ConfigureWaveform applies several settings in one call, one command per
// setting. The first failure stops the sequence; earlier settings stay
// applied.
func (g *SDG2042X) ConfigureWaveform(ch int, cfg WaveformConfig) error {
	return applyWaveformConfig(g, ch, cfg)
}

func (g *SDG2042X) Reset() error {
	if !g.sess.Connected() {
		return bus.ErrNotConnected
	}
	return instrument.Reset(g.sess)
}
