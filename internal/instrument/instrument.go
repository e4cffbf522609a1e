// Package instrument holds the pieces shared by every instrument facade:
// the session contract they drive, the capability model for restricted
// variants, and the common IEEE-488.2 operations.
package instrument

import "log"

// Session is the slice of the bus session the facades use. Facades accept
// this interface so tests can substitute a scripted session.
type Session interface {
	Open() error
	Close() error
	Connected() bool
	Write(cmd string) error
	Query(cmd string) (string, error)
	CheckAlive() bool
}

// Capability names an optional feature an instrument may or may not carry.
type Capability string

const (
	// CapSecondaryDisplay marks meters with a second measurement display.
	CapSecondaryDisplay Capability = "secondary-display"
	// CapDutyCycle marks generators that can set square wave duty cycle.
	CapDutyCycle Capability = "duty-cycle"
	// CapSymmetry marks generators that can set ramp symmetry.
	CapSymmetry Capability = "symmetry"
	// CapPulseShape marks generators with pulse width and edge time control.
	CapPulseShape Capability = "pulse-shape"
	// CapArbitrary marks generators with arbitrary waveform memory.
	CapArbitrary Capability = "arbitrary"
	// CapPhase marks generators with an adjustable start phase.
	CapPhase Capability = "phase"
	// CapLoadImpedance marks generators with a selectable output load.
	CapLoadImpedance Capability = "load-impedance"
	// CapCompare marks meters with limit-compare support.
	CapCompare Capability = "compare"
	// CapRelative marks meters with relative (null) measurement support.
	CapRelative Capability = "relative"
)

// Device is the surface common to every instrument facade.
type Device interface {
	Connect() error
	Disconnect() error
	Connected() bool
	Identify() (string, error)
	Supports(cap Capability) bool
}

// Acquire connects the device, runs fn, and disconnects no matter how fn
// returns. The fn error wins over a disconnect error.
func Acquire(d Device, fn func() error) error {
	if err := d.Connect(); err != nil {
		return err
	}

	defer func() {
		if err := d.Disconnect(); err != nil {
			log.Printf("error disconnecting instrument: %v", err)
		}
	}()

	return fn()
}
