package units

import (
	"github.com/banshee-data/polarscan/internal/frame"
)

// Observation is a Reading expressed in physical units. Distance is only
// meaningful when Valid is true.
type Observation struct {
	Angle    int
	RawCode  int
	Voltage  float64
	Distance float64
	Valid    bool
}

// Converter turns readings into observations. It holds no state and is safe
// to share.
type Converter struct {
	cal   Calibration
	curve Curve
}

// NewConverter returns a converter for the given calibration and curve. A nil
// curve selects DefaultCurve.
func NewConverter(cal Calibration, curve Curve) (*Converter, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	if curve == nil {
		curve = DefaultCurve()
	}
	return &Converter{cal: cal, curve: curve}, nil
}

// Calibration returns the converter's calibration.
func (c *Converter) Calibration() Calibration { return c.cal }

// Curve returns the converter's sensor curve.
func (c *Converter) Curve() Curve { return c.curve }

// Convert applies the calibration and curve to r. Readings whose voltage falls
// outside the response window come back invalid with a zero distance.
func (c *Converter) Convert(r frame.Reading) Observation {
	obs := Observation{
		Angle:   r.Angle,
		RawCode: r.RawCode,
		Voltage: c.cal.Voltage(r.RawCode),
	}
	if !c.cal.InWindow(obs.Voltage) {
		return obs
	}
	obs.Distance = c.curve.Distance(obs.Voltage)
	obs.Valid = true
	return obs
}
