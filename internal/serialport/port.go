package serialport

import (
	"io"
	"time"
)

// SerialPorter is the minimal surface the line reader needs from a port.
// The rig only talks, so no Write is required.
type SerialPorter interface {
	io.Reader
	io.Closer
}

// TimeoutSerialPorter is implemented by ports that support a read timeout.
// A Read that hits the timeout returns (0, nil).
type TimeoutSerialPorter interface {
	SerialPorter
	SetReadTimeout(timeout time.Duration) error
}

// Opener opens the named port with the given options and read timeout. Open
// is the real implementation; tests inject their own.
type Opener func(path string, opts PortOptions, readTimeout time.Duration) (TimeoutSerialPorter, error)

// applyReadTimeout sets d on port, substituting DefaultReadTimeout for a
// non-positive d.
func applyReadTimeout(port TimeoutSerialPorter, d time.Duration) error {
	if d <= 0 {
		d = DefaultReadTimeout
	}
	return port.SetReadTimeout(d)
}
