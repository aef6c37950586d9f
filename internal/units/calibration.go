package units

import (
	"errors"
	"fmt"
	"math"
)

// Calibration constants of the analog front end and the sensor's documented
// response window.
const (
	DefaultADCMax    = 4095 // 12-bit ADC
	DefaultVRef      = 3.3
	DefaultWindowMin = 0.4
	DefaultWindowMax = 2.5
)

var errBadCalibration = errors.New("invalid calibration")

// Calibration describes how raw codes map to voltages and which voltages the
// sensor curve is valid for. The window is the closed interval
// [WindowMin, WindowMax].
type Calibration struct {
	ADCMax    int
	VRef      float64
	WindowMin float64
	WindowMax float64
}

// DefaultCalibration returns the calibration for a 12-bit ADC with a 3.3 V
// reference feeding a GP2D12.
func DefaultCalibration() Calibration {
	return Calibration{
		ADCMax:    DefaultADCMax,
		VRef:      DefaultVRef,
		WindowMin: DefaultWindowMin,
		WindowMax: DefaultWindowMax,
	}
}

// Voltage converts a raw code to volts.
func (c Calibration) Voltage(rawCode int) float64 {
	return float64(rawCode) / float64(c.ADCMax) * c.VRef
}

// InWindow reports whether v lies within the sensor's valid response window.
// NaN is never in the window.
func (c Calibration) InWindow(v float64) bool {
	return v >= c.WindowMin && v <= c.WindowMax
}

// Validate rejects calibrations that would make conversion undefined. A
// non-positive lower window bound would admit a zero voltage into curves that
// divide by it. NaN and infinite values are rejected everywhere.
func (c Calibration) Validate() error {
	if c.ADCMax <= 0 {
		return fmt.Errorf("%w: adc_max must be positive, got %d", errBadCalibration, c.ADCMax)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"vref", c.VRef}, {"window_min", c.WindowMin}, {"window_max", c.WindowMax}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %g", errBadCalibration, f.name, f.v)
		}
	}
	if c.VRef <= 0 {
		return fmt.Errorf("%w: vref must be positive, got %g", errBadCalibration, c.VRef)
	}
	if c.WindowMin <= 0 {
		return fmt.Errorf("%w: window_min must be positive, got %g", errBadCalibration, c.WindowMin)
	}
	if c.WindowMax < c.WindowMin {
		return fmt.Errorf("%w: window_max %g is below window_min %g", errBadCalibration, c.WindowMax, c.WindowMin)
	}
	return nil
}
