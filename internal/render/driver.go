package render

import (
	"time"

	"github.com/banshee-data/polarscan/internal/timeutil"
)

// DefaultPumpPause is how long Pump yields after a redraw so a display can
// refresh.
const DefaultPumpPause = 10 * time.Millisecond

// Driver issues sink calls on behalf of the scan table.
type Driver struct {
	sink  Sink
	clock timeutil.Clock
	pause time.Duration
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithClock sets the clock used for the pump pause.
func WithClock(c timeutil.Clock) DriverOption {
	return func(d *Driver) { d.clock = c }
}

// WithPumpPause sets the pause taken after each pump. Zero disables it.
func WithPumpPause(p time.Duration) DriverOption {
	return func(d *Driver) { d.pause = p }
}

// NewDriver wraps sink.
func NewDriver(sink Sink, opts ...DriverOption) *Driver {
	d := &Driver{
		sink:  sink,
		clock: timeutil.RealClock{},
		pause: DefaultPumpPause,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Replace clears old, if any, before drawing the point for angle at distance.
// It returns the released handle (NoHandle when there was none) and the new
// one.
func (d *Driver) Replace(old Handle, angle int, distance float64) (released, fresh Handle) {
	if old != NoHandle {
		d.sink.ClearPoint(old)
		released = old
	}
	fresh = d.sink.SetPoint(DegToRad(angle), distance)
	return released, fresh
}

// Pump redraws the sink and then pauses briefly.
func (d *Driver) Pump() error {
	err := d.sink.Pump()
	if d.pause > 0 {
		d.clock.Sleep(d.pause)
	}
	return err
}

// Flush redraws the sink without pausing.
func (d *Driver) Flush() error {
	return d.sink.Pump()
}

// Close releases the sink.
func (d *Driver) Close() error {
	return d.sink.Close()
}
