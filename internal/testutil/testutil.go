// Package testutil provides shared test helpers and fixtures.
package testutil

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/banshee-data/polarscan/internal/frame"
	"github.com/banshee-data/polarscan/internal/units"
)

// NewObservedLogger returns a debug-level logger whose entries can be
// inspected by the test.
func NewObservedLogger(t *testing.T) (*zap.SugaredLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

// Line formats a reading the way the rig firmware sends it.
func Line(angle, code int) string {
	return strconv.Itoa(angle) + frame.Separator + strconv.Itoa(code) + "\r\n"
}

// Capture joins readings into a capture stream.
func Capture(readings ...frame.Reading) string {
	var b strings.Builder
	for _, r := range readings {
		b.WriteString(Line(r.Angle, r.RawCode))
	}
	return b.String()
}

// CodeForDistance inverts the default calibration and GP2D12 curve, giving
// the raw code the sensor would report at cm.
func CodeForDistance(cm float64) int {
	cal := units.DefaultCalibration()
	v := units.GP2D12K / (cm + units.GP2D12Offset)
	return int(math.Round(v / cal.VRef * float64(cal.ADCMax)))
}

// Sweep returns one reading per step around the circle, all at cm.
func Sweep(step int, cm float64) []frame.Reading {
	code := CodeForDistance(cm)
	out := make([]frame.Reading, 0, frame.FullCircle/step)
	for a := 0; a < frame.FullCircle; a += step {
		out = append(out, frame.Reading{Angle: a, RawCode: code})
	}
	return out
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
