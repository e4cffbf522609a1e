// Package awg provides facades for arbitrary waveform generators. As with
// the meter facades, every setting is validated locally before a command is
// sent, and numeric limits are adjustable per instrument.
package awg

import "github.com/benchbus/benchbus/internal/instrument"

// Waveform shapes understood by the facades. Not every generator carries
// the full set.
const (
	WaveSine   = "SINE"
	WaveSquare = "SQUARE"
	WaveRamp   = "RAMP"
	WavePulse  = "PULSE"
	WaveNoise  = "NOISE"
	WaveArb    = "ARB"
	WaveDC     = "DC"
	WavePRBS   = "PRBS"
	WaveIQ     = "IQ"
)

// WaveformGenerator is the surface common to every generator facade.
// Channel numbers start at 1. Operations a model lacks return an error
// wrapping instrument.ErrUnsupported.
type WaveformGenerator interface {
	instrument.Device

	Channels() int
	Limits() *Limits

	SetWaveform(ch int, wave string) error
	SetFrequency(ch int, hz float64) error
	Frequency(ch int) (instrument.Quantity, error)
	SetAmplitude(ch int, volts float64) error
	Amplitude(ch int) (instrument.Quantity, error)
	SetOffset(ch int, volts float64) error
	Offset(ch int) (instrument.Quantity, error)
	SetPhase(ch int, degrees float64) error
	SetDutyCycle(ch int, percent float64) error
	SetSymmetry(ch int, percent float64) error

	SetOutput(ch int, on bool) error
	Output(ch int) (bool, error)

	ConfigureWaveform(ch int, cfg WaveformConfig) error

	Reset() error
}

// WaveformConfig is a bundle of settings applied in one call. Nil fields
// are left alone; the zero Waveform string means keep the current shape.
type WaveformConfig struct {
	Waveform  string
	Frequency *float64
	Amplitude *float64
	Offset    *float64
	Phase     *float64
	DutyCycle *float64
	Symmetry  *float64
}

// applyWaveformConfig applies cfg one setting at a time in a fixed order,
// stopping at the first failure. Settings already applied stay applied;
// there is no rollback.
func applyWaveformConfig(g WaveformGenerator, ch int, cfg WaveformConfig) error {
	if cfg.Waveform != "" {
		if err := g.SetWaveform(ch, cfg.Waveform); err != nil {
			return err
		}
	}
	if cfg.Frequency != nil {
		if err := g.SetFrequency(ch, *cfg.Frequency); err != nil {
			return err
		}
	}
	if cfg.Amplitude != nil {
		if err := g.SetAmplitude(ch, *cfg.Amplitude); err != nil {
			return err
		}
	}
	if cfg.Offset != nil {
		if err := g.SetOffset(ch, *cfg.Offset); err != nil {
			return err
		}
	}
	if cfg.Phase != nil {
		if err := g.SetPhase(ch, *cfg.Phase); err != nil {
			return err
		}
	}
	if cfg.DutyCycle != nil {
		if err := g.SetDutyCycle(ch, *cfg.DutyCycle); err != nil {
			return err
		}
	}
	if cfg.Symmetry != nil {
		if err := g.SetSymmetry(ch, *cfg.Symmetry); err != nil {
			return err
		}
	}
	return nil
}
