// Package dmm provides facades for bench digital multimeters. Each facade
// validates setting values locally before anything goes out on the bus, so
// an out-of-range request never reaches the instrument.
package dmm

import "github.com/benchbus/benchbus/internal/instrument"

// The measurement functions shared across supported meters. Facades accept
// these tokens case-insensitively and translate them to the instrument's
// own command language.
const (
	FuncVDC   = "VDC"
	FuncVAC   = "VAC"
	FuncVACDC = "VACDC"
	FuncADC   = "ADC"
	FuncAAC   = "AAC"
	FuncOhms  = "OHMS"
	FuncFreq  = "FREQ"
	FuncCont  = "CONT"
	FuncDiode = "DIODE"
)

// Multimeter is the surface common to every meter facade. Operations a
// model lacks return an error wrapping instrument.ErrUnsupported.
type Multimeter interface {
	instrument.Device

	SetFunction(name string) error
	SetSecondaryFunction(name string) error
	SetRate(rate string) error
	SetAutoRange(on bool) error
	AutoRange() (bool, error)

	// Primary and friends trigger a fresh measurement; PrimaryValue and
	// SecondaryValue read back what the displays already show.
	Primary() (float64, error)
	Secondary() (float64, error)
	Both() (float64, float64, error)
	PrimaryValue() (float64, error)
	SecondaryValue() (float64, error)

	Reset() error
	SelfTest() (int, error)
}
