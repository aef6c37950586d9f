package serialport

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/banshee-data/polarscan/internal/fsutil"
	"github.com/banshee-data/polarscan/internal/timeutil"
)

// ReplayPort plays back a recorded capture as if it came off the wire. Each
// line is delivered after Interval on the clock; a zero Interval replays as
// fast as the reader pulls.
type ReplayPort struct {
	data     []byte
	pos      int
	clock    timeutil.Clock
	interval time.Duration
	closed   bool
}

// NewReplayPort returns a port that replays data.
func NewReplayPort(data []byte, clock timeutil.Clock, interval time.Duration) *ReplayPort {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &ReplayPort{data: data, clock: clock, interval: interval}
}

// OpenReplay loads a capture file from fsys.
func OpenReplay(fsys fsutil.FileSystem, path string, clock timeutil.Clock, interval time.Duration) (*ReplayPort, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capture %s: %w", path, err)
	}
	return NewReplayPort(data, clock, interval), nil
}

// Read returns at most one line per call and io.EOF once the capture is
// exhausted.
func (p *ReplayPort) Read(b []byte) (int, error) {
	if p.closed {
		return 0, io.ErrClosedPipe
	}
	if p.pos >= len(p.data) {
		return 0, io.EOF
	}
	if p.interval > 0 && (p.pos == 0 || p.data[p.pos-1] == '\n') {
		p.clock.Sleep(p.interval)
	}

	end := len(p.data)
	if i := bytes.IndexByte(p.data[p.pos:], '\n'); i >= 0 {
		end = p.pos + i + 1
	}
	n := copy(b, p.data[p.pos:end])
	p.pos += n
	return n, nil
}

var _ TimeoutSerialPorter = (*ReplayPort)(nil)

// SetReadTimeout is accepted for parity with real ports; replay never times
// out.
func (p *ReplayPort) SetReadTimeout(time.Duration) error { return nil }

// Close stops the replay.
func (p *ReplayPort) Close() error {
	p.closed = true
	return nil
}
