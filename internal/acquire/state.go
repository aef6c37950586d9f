package acquire

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/banshee-data/polarscan/internal/frame"
)

// State is the lifecycle phase of a Pipeline.
type State int

const (
	Running State = iota
	Draining
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stats counts what the loop did with each line it read.
type Stats struct {
	Lines       int
	Accepted    int
	Replaced    int
	OutOfWindow int
	Timeouts    int
	Rejected    map[frame.Reason]int

	// Elapsed is the clock time from the start of Run to the final redraw.
	Elapsed time.Duration
}

func newStats() Stats {
	return Stats{Rejected: make(map[frame.Reason]int)}
}

// TotalRejected sums the per-reason decode rejections.
func (s Stats) TotalRejected() int {
	n := 0
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

func (s Stats) clone() Stats {
	out := s
	out.Rejected = make(map[frame.Reason]int, len(s.Rejected))
	for k, v := range s.Rejected {
		out.Rejected[k] = v
	}
	return out
}

// String renders the counters on one line, rejection reasons sorted.
func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "lines=%d accepted=%d replaced=%d out_of_window=%d timeouts=%d rejected=%d",
		s.Lines, s.Accepted, s.Replaced, s.OutOfWindow, s.Timeouts, s.TotalRejected())

	reasons := make([]frame.Reason, 0, len(s.Rejected))
	for r := range s.Rejected {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	for _, r := range reasons {
		fmt.Fprintf(&b, " %s=%d", r, s.Rejected[r])
	}
	return b.String()
}
