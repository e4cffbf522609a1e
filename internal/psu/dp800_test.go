package psu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchbus/benchbus/internal/bus"
	"github.com/benchbus/benchbus/internal/instrument"
	"github.com/benchbus/benchbus/internal/validate"
)

var _ instrument.Device = (*DP800)(nil)

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

func newTestDP800() (*DP800, *scriptedSession) {
	sess := newScriptedSession()
	return &DP800{sess: sess}, sess
}

func TestDP800SetVoltage(t *testing.T) {
	p, sess := newTestDP800()

	require.NoError(t, p.SetVoltage(1, 5.0))
	assert.Equal(t, []string{":SOUR1:VOLT 5"}, sess.writes)
}

func TestDP800ChannelVoltageCeilings(t *testing.T) {
	p, sess := newTestDP800()

	// Channel 1 takes up to 32 V; the logic rail tops out at 5.3 V.
	require.NoError(t, p.SetVoltage(1, 24))

	err := p.SetVoltage(3, 12)
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.Len(t, sess.writes, 1)

	require.NoError(t, p.SetVoltage(3, 3.3))
}

func TestDP800InvalidChannel(t *testing.T) {
	p, sess := newTestDP800()

	err := p.SetVoltage(4, 1)
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.Empty(t, sess.writes)
}

func TestDP800Apply(t *testing.T) {
	p, sess := newTestDP800()

	require.NoError(t, p.Apply(2, 12, 1.5))
	assert.Equal(t, []string{":APPL CH2,12,1.5"}, sess.writes)

	err := p.Apply(2, 12, 5)
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.Len(t, sess.writes, 1)
}

func TestDP800Measurements(t *testing.T) {
	p, sess := newTestDP800()
	sess.responses[":MEAS:VOLT? CH1"] = "5.0002"
	sess.responses[":MEAS:CURR? CH1"] = "0.1503"
	sess.responses[":MEAS:POWE? CH1"] = "0.7515"

	v, err := p.MeasureVoltage(1)
	require.NoError(t, err)
	assert.InDelta(t, 5.0002, v, 1e-9)

	i, err := p.MeasureCurrent(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.1503, i, 1e-9)

	w, err := p.MeasurePower(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.7515, w, 1e-9)
}

func TestDP800MeasureAll(t *testing.T) {
	p, sess := newTestDP800()
	sess.responses[":MEAS:ALL? CH2"] = "12.001,0.500,6.0005"

	m, err := p.MeasureAll(2)
	require.NoError(t, err)
	assert.InDelta(t, 12.001, m.Volts, 1e-9)
	assert.InDelta(t, 0.5, m.Amps, 1e-9)
	assert.InDelta(t, 6.0005, m.Watts, 1e-9)
}

func TestDP800MeasureAllMalformed(t *testing.T) {
	p, sess := newTestDP800()
	sess.responses[":MEAS:ALL? CH1"] = "12.001,0.500"

	_, err := p.MeasureAll(1)
	require.Error(t, err)
	assert.ErrorIs(t, err, bus.ErrCommand)
}

func TestDP800Output(t *testing.T) {
	p, sess := newTestDP800()
	sess.responses[":OUTP? CH1"] = "ON"

	require.NoError(t, p.SetOutput(1, true))
	require.NoError(t, p.SetOutput(1, false))
	assert.Equal(t, []string{":OUTP CH1,ON", ":OUTP CH1,OFF"}, sess.writes)

	on, err := p.Output(1)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestDP800Protection(t *testing.T) {
	p, sess := newTestDP800()

	require.NoError(t, p.SetOverVoltage(1, 5.5))
	require.NoError(t, p.SetOverVoltageEnabled(1, true))
	require.NoError(t, p.SetOverCurrent(1, 2.0))
	require.NoError(t, p.SetOverCurrentEnabled(1, true))

	assert.Equal(t, []string{
		":SOUR1:VOLT:PROT 5.5",
		":SOUR1:VOLT:PROT:STAT ON",
		":SOUR1:CURR:PROT 2",
		":SOUR1:CURR:PROT:STAT ON",
	}, sess.writes)
}

func TestDP800Disconnected(t *testing.T) {
	p, sess := newTestDP800()
	sess.connected = false

	err := p.SetVoltage(1, 99)
	assert.ErrorIs(t, err, bus.ErrNotConnected)
	assert.NotErrorIs(t, err, validate.ErrValidation)
}
