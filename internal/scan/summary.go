package scan

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/polarscan/internal/frame"
	"github.com/banshee-data/polarscan/internal/units"
)

// Summary describes the table at the end of a run.
type Summary struct {
	Angles   int
	Coverage float64 // fraction of the full circle holding a point
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
}

// Summarize computes coverage and distance statistics over points.
func Summarize(points []Point) Summary {
	s := Summary{
		Angles:   len(points),
		Coverage: float64(len(points)) / frame.FullCircle,
	}
	if len(points) == 0 {
		return s
	}
	d := make([]float64, len(points))
	for i, p := range points {
		d[i] = p.Distance
	}
	s.Mean, s.StdDev = stat.MeanStdDev(d, nil)
	if len(d) == 1 {
		s.StdDev = 0
	}
	s.Min = floats.Min(d)
	s.Max = floats.Max(d)
	return s
}

// Format renders the summary in the given display units.
func (s Summary) Format(unit string) string {
	if s.Angles == 0 {
		return "no angles observed"
	}
	conv := func(v float64) float64 { return units.ConvertDistance(v, unit) }
	return fmt.Sprintf("%d/%d angles (%.0f%%) mean=%.1f%s sd=%.1f%s min=%.1f%s max=%.1f%s",
		s.Angles, frame.FullCircle, s.Coverage*100,
		conv(s.Mean), unit, conv(s.StdDev), unit, conv(s.Min), unit, conv(s.Max), unit)
}
