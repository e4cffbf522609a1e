package dmm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benchbus/benchbus/internal/bus"
	"github.com/benchbus/benchbus/internal/instrument"
	"github.com/benchbus/benchbus/internal/validate"
)

const fluke45Model = "Fluke 45"

var (
	fluke45Functions = []string{
		FuncVDC, FuncVAC, FuncVACDC, FuncADC, FuncAAC, FuncOhms, FuncFreq,
		FuncCont, FuncDiode,
	}

	// The secondary display cannot show continuity or diode test.
	fluke45SecondaryFunctions = []string{
		FuncVDC, FuncVAC, FuncADC, FuncAAC, FuncOhms, FuncFreq,
	}

	fluke45Rates = []string{"S", "M", "F"}

	// The dB reference impedances the meter accepts, in ohms.
	fluke45DBRefs = []int{
		50, 75, 93, 110, 125, 135, 150, 250, 300, 500,
		600, 800, 900, 1000, 1200, 8000,
	}

	fluke45Caps = map[instrument.Capability]bool{
		instrument.CapSecondaryDisplay: true,
		instrument.CapCompare:          true,
		instrument.CapRelative:         true,
	}
)

// Fluke45 drives the Fluke 45 dual display multimeter over GPIB or RS-232.
// The serial interface echoes a "=>"/"?>"/"!>" prompt after every command,
// which the session decodes into command errors.
type Fluke45 struct {
	sess instrument.Session

	compareLow     float64
	compareHigh    float64
	compareLowSet  bool
	compareHighSet bool
}

// NewFluke45 builds a facade from connection options. The instrument is not
// contacted until Connect.
func NewFluke45(opts instrument.ConnectOptions) *Fluke45 {
	resource := opts.ResourceString()

	return &Fluke45{
		sess: bus.NewSession(bus.SessionConfig{
			Resource: resource,
			Timeout:  opts.Timeout,
			IDNMatch: matchFluke45,
			Prompts:  strings.HasPrefix(resource, "serial::"),
		}),
	}
}

func matchFluke45(idn string) bool {
	return strings.Contains(idn, "FLUKE") && strings.Contains(idn, "45")
}

func (d *Fluke45) Connect() error    { return d.sess.Open() }
func (d *Fluke45) Disconnect() error { return d.sess.Close() }
func (d *Fluke45) Connected() bool   { return d.sess.Connected() }

func (d *Fluke45) Identify() (string, error) {
	if !d.sess.Connected() {
		return "", bus.ErrNotConnected
	}
	return instrument.Identify(d.sess)
}

func (d *Fluke45) Supports(cap instrument.Capability) bool {
	return fluke45Caps[cap]
}

// SetFunction selects the primary display measurement function.
func (d *Fluke45) SetFunction(name string) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	fn, err := validate.InSet("function", name, fluke45Functions)
	if err != nil {
		return err
	}
	return d.sess.Write(fn)
}

// SetSecondaryFunction selects the secondary display function. The meter
// uses the primary function token with a "2" suffix.
func (d *Fluke45) SetSecondaryFunction(name string) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	fn, err := validate.InSet("secondary function", name, fluke45SecondaryFunctions)
	if err != nil {
		return err
	}
	return d.sess.Write(fn + "2")
}

// ClearSecondaryFunction blanks the secondary display.
func (d *Fluke45) ClearSecondaryFunction() error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}
	return d.sess.Write("CLR2")
}

// SetRate selects the reading rate: S, M or F.
func (d *Fluke45) SetRate(rate string) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	r, err := validate.InSet("rate", rate, fluke45Rates)
	if err != nil {
		return err
	}
	return d.sess.Write("RATE " + r)
}

// SetRange selects a fixed measurement range, 1 through 7. The meaning of
// each step depends on the active function and rate.
func (d *Fluke45) SetRange(n int) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	if err := validate.IntInRange("range", n, 1, 7); err != nil {
		return err
	}
	return d.sess.Write(fmt.Sprintf("RANGE %d", n))
}

// SetAutoRange switches between autoranging and the current fixed range.
func (d *Fluke45) SetAutoRange(on bool) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	if on {
		return d.sess.Write("AUTO")
	}
	return d.sess.Write("FIXED")
}

// AutoRange reports whether the meter is autoranging.
func (d *Fluke45) AutoRange() (bool, error) {
	if !d.sess.Connected() {
		return false, bus.ErrNotConnected
	}

	resp, err := d.sess.Query("AUTO?")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(resp) == "1", nil
}

// SetRelative enables or disables relative mode. When enabled the current
// reading becomes the offset subtracted from later readings.
func (d *Fluke45) SetRelative(on bool) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	if on {
		return d.sess.Write("REL")
	}
	return d.sess.Write("RELCLR")
}

// SetRelativeOffset enables relative mode with an explicit offset.
func (d *Fluke45) SetRelativeOffset(offset float64) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}
	return d.sess.Write(fmt.Sprintf("RELSET %G", offset))
}

// SetDB enables or disables dB display of voltage readings.
func (d *Fluke45) SetDB(on bool) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	if on {
		return d.sess.Write("DB")
	}
	return d.sess.Write("DBCLR")
}

// SetDBReference sets the dB reference impedance in ohms. Only the values
// the meter documents are accepted.
func (d *Fluke45) SetDBReference(ohms int) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	if err := validate.OneOfInts("dB reference", ohms, fluke45DBRefs); err != nil {
		return err
	}
	return d.sess.Write(fmt.Sprintf("DBREF %d", ohms))
}

// SetHold enables or disables touch hold.
func (d *Fluke45) SetHold(on bool) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	if on {
		return d.sess.Write("HOLD")
	}
	return d.sess.Write("HOLDCLR")
}

// TrackMinimum starts tracking the minimum reading on the secondary display.
func (d *Fluke45) TrackMinimum() error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}
	return d.sess.Write("MIN")
}

// TrackMaximum starts tracking the maximum reading on the secondary display.
func (d *Fluke45) TrackMaximum() error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}
	return d.sess.Write("MAX")
}

// ClearMinMax stops min/max tracking.
func (d *Fluke45) ClearMinMax() error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}
	return d.sess.Write("MMCLR")
}

// SetCompare enables or disables limit comparison.
func (d *Fluke45) SetCompare(on bool) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	if on {
		return d.sess.Write("COMP")
	}
	return d.sess.Write("COMPCLR")
}

// SetCompareLow sets the low comparison limit. The limit must stay below
// any high limit already set.
func (d *Fluke45) SetCompareLow(v float64) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	if d.compareHighSet {
		if err := validate.OrderedPair("compare low", v, "compare high", d.compareHigh); err != nil {
			return err
		}
	}
	if err := d.sess.Write(fmt.Sprintf("COMPLO %G", v)); err != nil {
		return err
	}
	d.compareLow = v
	d.compareLowSet = true
	return nil
}

// SetCompareHigh sets the high comparison limit. The limit must stay above
// any low limit already set.
func (d *Fluke45) SetCompareHigh(v float64) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	if d.compareLowSet {
		if err := validate.OrderedPair("compare low", d.compareLow, "compare high", v); err != nil {
			return err
		}
	}
	if err := d.sess.Write(fmt.Sprintf("COMPHI %G", v)); err != nil {
		return err
	}
	d.compareHigh = v
	d.compareHighSet = true
	return nil
}

// CompareResult reports the last comparison outcome: HI, LO or PASS.
func (d *Fluke45) CompareResult() (string, error) {
	if !d.sess.Connected() {
		return "", bus.ErrNotConnected
	}

	resp, err := d.sess.Query("COMP?")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

// SetTriggerMode selects trigger mode 1 through 5. Mode 1 is internal
// triggering; the rest are external variants with and without settling
// delay and rear panel input.
func (d *Fluke45) SetTriggerMode(mode int) error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}

	if err := validate.IntInRange("trigger mode", mode, 1, 5); err != nil {
		return err
	}
	return d.sess.Write(fmt.Sprintf("TRIGGER %d", mode))
}

// Trigger issues a bus trigger for the external trigger modes.
func (d *Fluke45) Trigger() error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}
	return instrument.Trigger(d.sess)
}

// Primary triggers a measurement and returns the primary display reading.
func (d *Fluke45) Primary() (float64, error) {
	if !d.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	return instrument.QueryFloat(d.sess, "MEAS1?")
}

// Secondary triggers a measurement and returns the secondary display
// reading.
func (d *Fluke45) Secondary() (float64, error) {
	if !d.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	return instrument.QueryFloat(d.sess, "MEAS2?")
}

// Both triggers one measurement and returns both display readings.
func (d *Fluke45) Both() (float64, float64, error) {
	if !d.sess.Connected() {
		return 0, 0, bus.ErrNotConnected
	}

	resp, err := d.sess.Query("MEAS?")
	if err != nil {
		return 0, 0, err
	}

	parts := strings.Split(resp, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: expected two readings, got %q", bus.ErrBadResponse, resp)
	}

	primary, err := parseReading(parts[0])
	if err != nil {
		return 0, 0, err
	}
	secondary, err := parseReading(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return primary, secondary, nil
}

// PrimaryValue returns the reading already on the primary display without
// triggering a new measurement.
func (d *Fluke45) PrimaryValue() (float64, error) {
	if !d.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	return instrument.QueryFloat(d.sess, "VAL1?")
}

// SecondaryValue returns the reading already on the secondary display.
func (d *Fluke45) SecondaryValue() (float64, error) {
	if !d.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	return instrument.QueryFloat(d.sess, "VAL2?")
}

func (d *Fluke45) Reset() error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}
	return instrument.Reset(d.sess)
}

func (d *Fluke45) ClearStatus() error {
	if !d.sess.Connected() {
		return bus.ErrNotConnected
	}
	return instrument.ClearStatus(d.sess)
}

func (d *Fluke45) SelfTest() (int, error) {
	if !d.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	return instrument.SelfTest(d.sess)
}

func (d *Fluke45) StatusByte() (int, error) {
	if !d.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	return instrument.StatusByte(d.sess)
}

func (d *Fluke45) EventStatus() (int, error) {
	if !d.sess.Connected() {
		return 0, bus.ErrNotConnected
	}
	return instrument.EventStatus(d.sess)
}

func parseReading(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable reading %q", bus.ErrBadResponse, raw)
	}
	return v, nil
}
