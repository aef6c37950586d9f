// Package render draws the live polar scan. A Sink owns the drawing surface
// and hands out opaque handles for the points it draws; the Driver translates
// per-angle updates into sink calls.
//
// Every sink uses the same orientation: 0 rad points north and angles grow
// clockwise. Points are laid out on a square canvas bounded by the layout's
// maximum range.
package render

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Handle identifies one drawn point. The zero Handle is never issued.
type Handle uint64

// NoHandle is the zero Handle.
const NoHandle Handle = 0

// DefaultMaxRange is the default radial axis limit, in sensor units (cm).
const DefaultMaxRange = 100.0

var errBadLayout = errors.New("invalid layout")

// Sink is a plotting surface.
type Sink interface {
	// SetPoint draws a point at angle theta (radians, north zero, clockwise)
	// and distance r, returning the handle that identifies it.
	SetPoint(theta, r float64) Handle
	// ClearPoint removes a previously drawn point. Unknown handles are ignored.
	ClearPoint(h Handle)
	// Pump redraws the surface if anything changed since the last pump.
	Pump() error
	// Close flushes pending changes and releases the surface.
	Close() error
}

// Layout is the one-time configuration of a sink.
type Layout struct {
	MaxRange float64
	Title    string
	Subtitle string
}

// DefaultLayout returns a layout with the default maximum range.
func DefaultLayout() Layout {
	return Layout{MaxRange: DefaultMaxRange, Title: "Polar scan"}
}

// Validate checks that the layout can be drawn.
func (l Layout) Validate() error {
	if !(l.MaxRange > 0) || math.IsInf(l.MaxRange, 0) {
		return fmt.Errorf("%w: max range must be positive and finite, got %g", errBadLayout, l.MaxRange)
	}
	return nil
}

// Point is a drawn point in sink coordinates.
type Point struct {
	Theta float64
	R     float64
}

// XY projects p onto a plane with north up and clockwise angles.
func (p Point) XY() (x, y float64) {
	return p.R * math.Sin(p.Theta), p.R * math.Cos(p.Theta)
}

// InRange reports whether p lies within [0, maxRange] radially.
func (p Point) InRange(maxRange float64) bool {
	return p.R >= 0 && p.R <= maxRange
}

// DegToRad converts whole degrees to radians.
func DegToRad(deg int) float64 {
	return float64(deg) * math.Pi / 180
}

// pointSet is the handle bookkeeping shared by sinks.
type pointSet struct {
	next   Handle
	points map[Handle]Point
	dirty  bool
}

func newPointSet() pointSet {
	return pointSet{points: make(map[Handle]Point)}
}

func (s *pointSet) add(theta, r float64) Handle {
	s.next++
	s.points[s.next] = Point{Theta: theta, R: r}
	s.dirty = true
	return s.next
}

func (s *pointSet) remove(h Handle) bool {
	if _, ok := s.points[h]; !ok {
		return false
	}
	delete(s.points, h)
	s.dirty = true
	return true
}

// sorted returns the live points ordered by handle so renders are stable.
func (s *pointSet) sorted() []Point {
	handles := make([]Handle, 0, len(s.points))
	for h := range s.points {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	out := make([]Point, 0, len(handles))
	for _, h := range handles {
		out = append(out, s.points[h])
	}
	return out
}
