package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/polarscan/internal/frame"
)

func newDefaultConverter(t *testing.T) *Converter {
	t.Helper()
	c, err := NewConverter(DefaultCalibration(), nil)
	require.NoError(t, err)
	return c
}

func TestCalibration_Voltage(t *testing.T) {
	cal := DefaultCalibration()
	assert.InDelta(t, 0.0, cal.Voltage(0), 1e-12)
	assert.InDelta(t, 3.3, cal.Voltage(4095), 1e-12)
	assert.InDelta(t, 1.2088, cal.Voltage(1500), 1e-4)
	assert.InDelta(t, 1.4505, cal.Voltage(1800), 1e-4)
}

func TestCalibration_InWindowIsClosed(t *testing.T) {
	cal := DefaultCalibration()
	assert.True(t, cal.InWindow(0.4))
	assert.True(t, cal.InWindow(2.5))
	assert.True(t, cal.InWindow(1.0))
	assert.False(t, cal.InWindow(math.Nextafter(0.4, 0)))
	assert.False(t, cal.InWindow(math.Nextafter(2.5, 3)))
	assert.False(t, cal.InWindow(0))
	assert.False(t, cal.InWindow(math.NaN()))
	assert.False(t, cal.InWindow(math.Inf(1)))
}

func TestCalibration_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Calibration)
		wantErr bool
	}{
		{"defaults", func(*Calibration) {}, false},
		{"zero adc", func(c *Calibration) { c.ADCMax = 0 }, true},
		{"negative vref", func(c *Calibration) { c.VRef = -1 }, true},
		{"zero window min", func(c *Calibration) { c.WindowMin = 0 }, true},
		{"inverted window", func(c *Calibration) { c.WindowMax = 0.1 }, true},
		{"single point window", func(c *Calibration) { c.WindowMax = c.WindowMin }, false},
		{"nan vref", func(c *Calibration) { c.VRef = math.NaN() }, true},
		{"inf vref", func(c *Calibration) { c.VRef = math.Inf(1) }, true},
		{"nan window min", func(c *Calibration) { c.WindowMin = math.NaN() }, true},
		{"inf window min", func(c *Calibration) { c.WindowMin = math.Inf(1) }, true},
		{"nan window max", func(c *Calibration) { c.WindowMax = math.NaN() }, true},
		{"inf window max", func(c *Calibration) { c.WindowMax = math.Inf(1) }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cal := DefaultCalibration()
			tc.mutate(&cal)
			err := cal.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, errBadCalibration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewConverter_RejectsBadCalibration(t *testing.T) {
	_, err := NewConverter(Calibration{}, nil)
	require.Error(t, err)
}

func TestConvert_InWindowMatchesCurve(t *testing.T) {
	c := newDefaultConverter(t)
	cal := c.Calibration()

	for code := 0; code <= cal.ADCMax; code++ {
		v := cal.Voltage(code)
		obs := c.Convert(frame.Reading{Angle: 10, RawCode: code})
		assert.Equal(t, 10, obs.Angle)
		assert.Equal(t, code, obs.RawCode)

		if v < DefaultWindowMin || v > DefaultWindowMax {
			if obs.Valid {
				t.Fatalf("code %d (%.4f V) should be invalid", code, v)
			}
			if obs.Distance != 0 {
				t.Fatalf("invalid code %d carried distance %f", code, obs.Distance)
			}
			continue
		}

		if !obs.Valid {
			t.Fatalf("code %d (%.4f V) should be valid", code, v)
		}
		want := GP2D12K/v - GP2D12Offset
		if math.IsInf(obs.Distance, 0) || math.IsNaN(obs.Distance) {
			t.Fatalf("code %d produced non-finite distance", code)
		}
		if math.Abs(obs.Distance-want) > 1e-9 {
			t.Fatalf("code %d distance = %f, want %f", code, obs.Distance, want)
		}
	}
}

func TestConvert_ReferenceReadings(t *testing.T) {
	c := newDefaultConverter(t)

	obs := c.Convert(frame.Reading{Angle: 90, RawCode: 1500})
	require.True(t, obs.Valid)
	assert.InDelta(t, 1.209, obs.Voltage, 1e-3)
	assert.InDelta(t, 22.63, obs.Distance, 0.01)

	obs = c.Convert(frame.Reading{Angle: 0, RawCode: 1800})
	require.True(t, obs.Valid)
	assert.InDelta(t, 1.450, obs.Voltage, 1e-3)
	assert.InDelta(t, 18.79, obs.Distance, 0.01)
}

func TestConvert_OutOfWindow(t *testing.T) {
	c := newDefaultConverter(t)
	for _, code := range []int{-100, 0, 100, 400, 3200, 4095, 10000} {
		obs := c.Convert(frame.Reading{RawCode: code})
		assert.False(t, obs.Valid, "code %d", code)
	}
}

func TestConvert_SwappableCurve(t *testing.T) {
	curve := PowerCurve{Coefficient: 10, Exponent: -1}
	c, err := NewConverter(DefaultCalibration(), curve)
	require.NoError(t, err)

	obs := c.Convert(frame.Reading{RawCode: 1241}) // ~1.0 V
	require.True(t, obs.Valid)
	assert.InDelta(t, 10/obs.Voltage, obs.Distance, 1e-9)
	assert.Equal(t, curve, c.Curve())
}

func TestParseCurveModel(t *testing.T) {
	for in, want := range map[string]string{"": ModelInverse, "Inverse": ModelInverse, " power ": ModelPower} {
		got, err := ParseCurveModel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCurveModel("spline")
	assert.Error(t, err)
}

func TestCurveString(t *testing.T) {
	assert.Equal(t, "27.86/V - 0.42", InverseCurve{K: 27.86, Offset: 0.42}.String())
	assert.Equal(t, "60*V^-1.1", PowerCurve{Coefficient: 60, Exponent: -1.1}.String())
}
