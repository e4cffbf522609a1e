package dmm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchbus/benchbus/internal/instrument"
	"github.com/benchbus/benchbus/internal/validate"
)

func newTestFluke8845() (*Fluke8845, *scriptedSession) {
	sess := newScriptedSession()
	return &Fluke8845{sess: sess}, sess
}

func TestFluke8845FunctionMapsToSCPI(t *testing.T) {
	dev, sess := newTestFluke8845()

	require.NoError(t, dev.SetFunction("vdc"))
	assert.Equal(t, []string{"CONF:VOLT:DC"}, sess.writes)

	require.NoError(t, dev.SetFunction("OHMS4"))
	assert.Equal(t, "CONF:FRES", sess.writes[1])
}

func TestFluke8845RejectsACDCVoltage(t *testing.T) {
	dev, sess := newTestFluke8845()

	// The 8845A has no combined AC+DC volts function.
	err := dev.SetFunction("VACDC")
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.Equal(t, 0, sess.commandCount())
}

func TestFluke8845RateRequiresFunction(t *testing.T) {
	dev, sess := newTestFluke8845()

	err := dev.SetRate("S")
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.Equal(t, 0, sess.commandCount())

	require.NoError(t, dev.SetFunction("VDC"))
	require.NoError(t, dev.SetRate("S"))
	assert.Equal(t, "VOLT:DC:NPLC 10", sess.writes[1])
}

func TestFluke8845RateMapsToNPLC(t *testing.T) {
	dev, sess := newTestFluke8845()
	require.NoError(t, dev.SetFunction("VAC"))

	require.NoError(t, dev.SetRate("f"))
	assert.Equal(t, "VOLT:AC:NPLC 0.2", sess.writes[1])

	require.NoError(t, dev.SetRate("M"))
	assert.Equal(t, "VOLT:AC:NPLC 1", sess.writes[2])
}

func TestFluke8845RangeCommands(t *testing.T) {
	dev, sess := newTestFluke8845()
	require.NoError(t, dev.SetFunction("VDC"))

	require.NoError(t, dev.SetRange(10))
	assert.Equal(t, "VOLT:DC:RANG 10", sess.writes[1])

	require.NoError(t, dev.SetAutoRange(true))
	assert.Equal(t, "VOLT:DC:RANG:AUTO ON", sess.writes[2])

	sess.responses["VOLT:DC:RANG:AUTO?"] = "1"
	on, err := dev.AutoRange()
	require.NoError(t, err)
	assert.True(t, on)
}

func TestFluke8845SecondaryUnsupported(t *testing.T) {
	dev, sess := newTestFluke8845()

	err := dev.SetSecondaryFunction("VDC")
	assert.ErrorIs(t, err, instrument.ErrUnsupported)

	_, err = dev.Secondary()
	assert.ErrorIs(t, err, instrument.ErrUnsupported)

	_, _, err = dev.Both()
	assert.ErrorIs(t, err, instrument.ErrUnsupported)

	_, err = dev.SecondaryValue()
	assert.ErrorIs(t, err, instrument.ErrUnsupported)

	assert.Equal(t, 0, sess.commandCount())
	assert.False(t, dev.Supports(instrument.CapSecondaryDisplay))
}

func TestFluke8845Measurements(t *testing.T) {
	dev, sess := newTestFluke8845()
	sess.responses["READ?"] = "+1.00000000E+00"
	sess.responses["FETC?"] = "+2.00000000E+00"

	v, err := dev.Primary()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 1e-9)

	v, err = dev.PrimaryValue()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v, 1e-9)
}

func TestFluke8845ResetClearsFunction(t *testing.T) {
	dev, sess := newTestFluke8845()
	require.NoError(t, dev.SetFunction("VDC"))

	require.NoError(t, dev.Reset())
	assert.Equal(t, "*RST", sess.writes[1])

	err := dev.SetRate("S")
	assert.ErrorIs(t, err, validate.ErrValidation)
}
