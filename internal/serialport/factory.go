package serialport

import (
	"fmt"
	"sort"
	"time"

	"go.bug.st/serial"
)

// DefaultReadTimeout bounds each blocking read so cancellation is noticed.
const DefaultReadTimeout = time.Second

// Open opens a real serial port at path and applies readTimeout. A
// non-positive timeout selects DefaultReadTimeout.
func Open(path string, opts PortOptions, readTimeout time.Duration) (TimeoutSerialPorter, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := applyReadTimeout(port, readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", path, err)
	}
	return port, nil
}

// ListPorts returns the serial devices present on the system, sorted.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	sort.Strings(ports)
	return ports, nil
}
