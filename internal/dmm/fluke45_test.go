package dmm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchbus/benchbus/internal/bus"
	"github.com/benchbus/benchbus/internal/instrument"
	"github.com/benchbus/benchbus/internal/validate"
)

var (
	_ Multimeter = (*Fluke45)(nil)
	_ Multimeter = (*Fluke8845)(nil)
)

// scriptedSession stands in for a bus session and records traffic.
type scriptedSession struct {
	connected bool
	responses map[string]string
	writes    []string
	queries   []string
}

func newScriptedSession() *scriptedSession {
	return &scriptedSession{connected: true, responses: map[string]string{}}
}

func (s *scriptedSession) Open() error {
	s.connected = true
	return nil
}

func (s *scriptedSession) Close() error {
	s.connected = false
	return nil
}

func (s *scriptedSession) Connected() bool  { return s.connected }
func (s *scriptedSession) CheckAlive() bool { return s.connected }

func (s *scriptedSession) Write(cmd string) error {
	s.writes = append(s.writes, cmd)
	return nil
}

func (s *scriptedSession) Query(cmd string) (string, error) {
	s.queries = append(s.queries, cmd)
	return s.responses[cmd], nil
}

func (s *scriptedSession) commandCount() int {
	return len(s.writes) + len(s.queries)
}

func newTestFluke45() (*Fluke45, *scriptedSession) {
	sess := newScriptedSession()
	return &Fluke45{sess: sess}, sess
}

func TestFluke45FunctionNormalizesCase(t *testing.T) {
	dev, sess := newTestFluke45()

	require.NoError(t, dev.SetFunction("vdc"))
	assert.Equal(t, []string{"VDC"}, sess.writes)
}

func TestFluke45ACDCVoltage(t *testing.T) {
	dev, sess := newTestFluke45()

	require.NoError(t, dev.SetFunction("vacdc"))
	assert.Equal(t, []string{"VACDC"}, sess.writes)
}

func TestFluke45RejectsUnknownFunction(t *testing.T) {
	dev, sess := newTestFluke45()

	err := dev.SetFunction("TEMP")
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.Equal(t, 0, sess.commandCount())
}

func TestFluke45RangeOutOfBounds(t *testing.T) {
	dev, sess := newTestFluke45()

	err := dev.SetRange(9)
	require.Error(t, err)
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.Contains(t, err.Error(), "7")
	assert.Equal(t, 0, sess.commandCount())
}

func TestFluke45ConnectionCheckedBeforeValidation(t *testing.T) {
	dev, sess := newTestFluke45()
	sess.connected = false

	err := dev.SetRange(9)
	assert.ErrorIs(t, err, bus.ErrNotConnected)
	assert.NotErrorIs(t, err, validate.ErrValidation)
}

func TestFluke45SecondaryFunction(t *testing.T) {
	dev, sess := newTestFluke45()

	require.NoError(t, dev.SetSecondaryFunction("freq"))
	require.NoError(t, dev.ClearSecondaryFunction())
	assert.Equal(t, []string{"FREQ2", "CLR2"}, sess.writes)
}

func TestFluke45SecondaryFunctionRejectsDiode(t *testing.T) {
	dev, sess := newTestFluke45()

	err := dev.SetSecondaryFunction("DIODE")
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.Equal(t, 0, sess.commandCount())
}

func TestFluke45Rate(t *testing.T) {
	dev, sess := newTestFluke45()

	require.NoError(t, dev.SetRate("s"))
	assert.Equal(t, []string{"RATE S"}, sess.writes)

	err := dev.SetRate("X")
	assert.ErrorIs(t, err, validate.ErrValidation)
}

func TestFluke45AutoRange(t *testing.T) {
	dev, sess := newTestFluke45()
	sess.responses["AUTO?"] = "1"

	require.NoError(t, dev.SetAutoRange(true))
	require.NoError(t, dev.SetAutoRange(false))
	assert.Equal(t, []string{"AUTO", "FIXED"}, sess.writes)

	on, err := dev.AutoRange()
	require.NoError(t, err)
	assert.True(t, on)
}

func TestFluke45DBReference(t *testing.T) {
	dev, sess := newTestFluke45()

	require.NoError(t, dev.SetDBReference(600))
	assert.Equal(t, []string{"DBREF 600"}, sess.writes)

	err := dev.SetDBReference(55)
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.Len(t, sess.writes, 1)
}

func TestFluke45CompareLimitOrdering(t *testing.T) {
	dev, sess := newTestFluke45()

	require.NoError(t, dev.SetCompareLow(1.0))
	require.NoError(t, dev.SetCompareHigh(5.0))
	assert.Equal(t, []string{"COMPLO 1", "COMPHI 5"}, sess.writes)

	err := dev.SetCompareHigh(0.5)
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.Len(t, sess.writes, 2)

	err = dev.SetCompareLow(7.0)
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.Len(t, sess.writes, 2)
}

func TestFluke45CompareResult(t *testing.T) {
	dev, sess := newTestFluke45()
	sess.responses["COMP?"] = "PASS"

	result, err := dev.CompareResult()
	require.NoError(t, err)
	assert.Equal(t, "PASS", result)
}

func TestFluke45TriggerMode(t *testing.T) {
	dev, sess := newTestFluke45()

	require.NoError(t, dev.SetTriggerMode(3))
	assert.Equal(t, []string{"TRIGGER 3"}, sess.writes)

	err := dev.SetTriggerMode(6)
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.Len(t, sess.writes, 1)
}

func TestFluke45Measurements(t *testing.T) {
	dev, sess := newTestFluke45()
	sess.responses["MEAS1?"] = "+1.2345E+0"
	sess.responses["MEAS2?"] = "+5.0E-3"
	sess.responses["VAL1?"] = "+1.2000E+0"

	primary, err := dev.Primary()
	require.NoError(t, err)
	assert.InDelta(t, 1.2345, primary, 1e-9)

	secondary, err := dev.Secondary()
	require.NoError(t, err)
	assert.InDelta(t, 0.005, secondary, 1e-9)

	val, err := dev.PrimaryValue()
	require.NoError(t, err)
	assert.InDelta(t, 1.2, val, 1e-9)
}

func TestFluke45Both(t *testing.T) {
	dev, sess := newTestFluke45()
	sess.responses["MEAS?"] = "+1.2345E+0, +5.0E-3"

	primary, secondary, err := dev.Both()
	require.NoError(t, err)
	assert.InDelta(t, 1.2345, primary, 1e-9)
	assert.InDelta(t, 0.005, secondary, 1e-9)
}

func TestFluke45BothMalformedReply(t *testing.T) {
	dev, sess := newTestFluke45()
	sess.responses["MEAS?"] = "+1.2345E+0"

	_, _, err := dev.Both()
	require.Error(t, err)
	assert.ErrorIs(t, err, bus.ErrCommand)
}

func TestFluke45UnparseableReadingIsCommandError(t *testing.T) {
	dev, sess := newTestFluke45()
	sess.responses["MEAS1?"] = "garbage"

	_, err := dev.Primary()
	require.Error(t, err)
	assert.ErrorIs(t, err, bus.ErrCommand)
	assert.NotErrorIs(t, err, validate.ErrValidation)
}

func TestFluke45Capabilities(t *testing.T) {
	dev, _ := newTestFluke45()

	assert.True(t, dev.Supports(instrument.CapSecondaryDisplay))
	assert.True(t, dev.Supports(instrument.CapCompare))
	assert.False(t, dev.Supports(instrument.CapArbitrary))
}

func TestFluke45MeasureWhenDisconnected(t *testing.T) {
	dev, sess := newTestFluke45()
	sess.connected = false

	_, err := dev.Primary()
	assert.ErrorIs(t, err, bus.ErrNotConnected)
	assert.Equal(t, 0, sess.commandCount())
}
