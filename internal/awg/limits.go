package awg

import "github.com/benchbus/benchbus/internal/validate"

// Default setting limits, wide enough for the fastest supported generator.
// Callers working with a slower instrument or a sensitive circuit can
// tighten them per bound.
const (
	DefaultMinFrequency = 1e-6
	DefaultMaxFrequency = 40e6
	DefaultMinAmplitude = 0.002
	DefaultMaxAmplitude = 20.0
	DefaultMinOffset    = -10.0
	DefaultMaxOffset    = 10.0
	DefaultMinPhase     = 0.0
	DefaultMaxPhase     = 360.0
)

// Limits holds the numeric bounds a generator facade enforces before
// sending a setting. Bounds are adjusted in pairs so min and max can never
// cross.
type Limits struct {
	minFrequency, maxFrequency float64
	minAmplitude, maxAmplitude float64
	minOffset, maxOffset       float64
	minPhase, maxPhase         float64
}

// NewLimits returns limits at the defaults.
func NewLimits() *Limits {
	l := &Limits{}
	l.ResetToDefaults()
	return l
}

// ResetToDefaults restores every bound.
func (l *Limits) ResetToDefaults() {
	l.minFrequency, l.maxFrequency = DefaultMinFrequency, DefaultMaxFrequency
	l.minAmplitude, l.maxAmplitude = DefaultMinAmplitude, DefaultMaxAmplitude
	l.minOffset, l.maxOffset = DefaultMinOffset, DefaultMaxOffset
	l.minPhase, l.maxPhase = DefaultMinPhase, DefaultMaxPhase
}

// SetFrequencyBounds replaces the frequency limits.
func (l *Limits) SetFrequencyBounds(min, max float64) error {
	if err := validate.OrderedPair("minimum frequency", min, "maximum frequency", max); err != nil {
		return err
	}
	l.minFrequency, l.maxFrequency = min, max
	return nil
}

// SetAmplitudeBounds replaces the amplitude limits.
func (l *Limits) SetAmplitudeBounds(min, max float64) error {
	if err := validate.OrderedPair("minimum amplitude", min, "maximum amplitude", max); err != nil {
		return err
	}
	l.minAmplitude, l.maxAmplitude = min, max
	return nil
}

// SetOffsetBounds replaces the DC offset limits.
func (l *Limits) SetOffsetBounds(min, max float64) error {
	if err := validate.OrderedPair("minimum offset", min, "maximum offset", max); err != nil {
		return err
	}
	l.minOffset, l.maxOffset = min, max
	return nil
}

// SetPhaseBounds replaces the phase limits.
func (l *Limits) SetPhaseBounds(min, max float64) error {
	if err := validate.OrderedPair("minimum phase", min, "maximum phase", max); err != nil {
		return err
	}
	l.minPhase, l.maxPhase = min, max
	return nil
}

func (l *Limits) CheckFrequency(hz float64) error {
	return validate.InRange("frequency", hz, l.minFrequency, l.maxFrequency)
}

func (l *Limits) CheckAmplitude(volts float64) error {
	return validate.InRange("amplitude", volts, l.minAmplitude, l.maxAmplitude)
}

func (l *Limits) CheckOffset(volts float64) error {
	return validate.InRange("offset", volts, l.minOffset, l.maxOffset)
}

func (l *Limits) CheckPhase(degrees float64) error {
	return validate.InRange("phase", degrees, l.minPhase, l.maxPhase)
}
