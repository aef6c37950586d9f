package render

// Op names a recorded sink call.
type Op string

const (
	OpSet   Op = "set"
	OpClear Op = "clear"
	OpPump  Op = "pump"
	OpClose Op = "close"
)

// Call is one recorded sink call.
type Call struct {
	Op     Op
	Handle Handle
	Point  Point
}

// Recorder is an in-memory Sink that records every call instead of drawing.
// It backs the headless renderer and tests.
type Recorder struct {
	points pointSet
	calls  []Call
	closed bool

	// PumpErr is returned by every Pump call if set.
	PumpErr error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{points: newPointSet()}
}

func (r *Recorder) SetPoint(theta, radius float64) Handle {
	h := r.points.add(theta, radius)
	r.calls = append(r.calls, Call{Op: OpSet, Handle: h, Point: Point{Theta: theta, R: radius}})
	return h
}

func (r *Recorder) ClearPoint(h Handle) {
	r.points.remove(h)
	r.calls = append(r.calls, Call{Op: OpClear, Handle: h})
}

func (r *Recorder) Pump() error {
	r.points.dirty = false
	r.calls = append(r.calls, Call{Op: OpPump})
	return r.PumpErr
}

func (r *Recorder) Close() error {
	r.closed = true
	r.calls = append(r.calls, Call{Op: OpClose})
	return nil
}

// Calls returns every recorded call in order.
func (r *Recorder) Calls() []Call {
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Live returns the currently drawn points keyed by handle.
func (r *Recorder) Live() map[Handle]Point {
	out := make(map[Handle]Point, len(r.points.points))
	for h, p := range r.points.points {
		out[h] = p
	}
	return out
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool { return r.closed }
