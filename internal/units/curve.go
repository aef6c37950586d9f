package units

import (
	"fmt"
	"math"
	"strings"
)

// Curve maps an in-window sensor voltage to a distance in centimetres.
type Curve interface {
	Distance(voltage float64) float64
}

// Curve models accepted by ParseCurveModel.
const (
	ModelInverse = "inverse"
	ModelPower   = "power"
)

// GP2D12 datasheet fit.
const (
	GP2D12K      = 27.86
	GP2D12Offset = 0.42
)

// InverseCurve is distance = K/voltage - Offset.
type InverseCurve struct {
	K      float64
	Offset float64
}

func (c InverseCurve) Distance(voltage float64) float64 {
	return c.K/voltage - c.Offset
}

func (c InverseCurve) String() string {
	return fmt.Sprintf("%g/V - %g", c.K, c.Offset)
}

// PowerCurve is distance = Coefficient * voltage^Exponent, the usual fit for
// the longer range Sharp parts.
type PowerCurve struct {
	Coefficient float64
	Exponent    float64
}

func (c PowerCurve) Distance(voltage float64) float64 {
	return c.Coefficient * math.Pow(voltage, c.Exponent)
}

func (c PowerCurve) String() string {
	return fmt.Sprintf("%g*V^%g", c.Coefficient, c.Exponent)
}

// DefaultCurve returns the GP2D12 inverse curve.
func DefaultCurve() Curve {
	return InverseCurve{K: GP2D12K, Offset: GP2D12Offset}
}

// ParseCurveModel normalises a curve model name.
func ParseCurveModel(s string) (string, error) {
	switch m := strings.ToLower(strings.TrimSpace(s)); m {
	case "", ModelInverse:
		return ModelInverse, nil
	case ModelPower:
		return ModelPower, nil
	default:
		return "", fmt.Errorf("unsupported curve model %q: expected %s or %s", s, ModelInverse, ModelPower)
	}
}
