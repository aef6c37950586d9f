package serialport

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

var errPortClosed = errors.New("serial port closed")

// TestableSerialPort implements TimeoutSerialPorter with configurable
// behaviour for tests. Unlike a blocking port, a Read on an empty buffer
// returns (0, nil), the same signal a real port gives on timeout.
type TestableSerialPort struct {
	mu sync.Mutex

	// ReadBuffer holds data to be returned by Read calls
	ReadBuffer *bytes.Buffer

	// Script, when set, supplies the result of each Read in order before
	// ReadBuffer is consulted.
	Script []ReadStep

	// ReadError is returned by the next Read call once Script and ReadBuffer
	// are drained.
	ReadError error

	// CloseError is returned by Close if set
	CloseError error

	// Closed indicates whether Close was called
	Closed bool

	// CloseCalls records the number of Close calls
	CloseCalls int

	// ReadCalls records the number of Read calls
	ReadCalls int

	// ReadTimeout is the current read timeout
	ReadTimeout time.Duration
}

// ReadStep is one scripted Read outcome. Empty Data with no Err is a
// timeout.
type ReadStep struct {
	Data string
	Err  error
}

// NewTestableSerialPort creates a new TestableSerialPort.
func NewTestableSerialPort() *TestableSerialPort {
	return &TestableSerialPort{ReadBuffer: bytes.NewBuffer(nil)}
}

// Read serves scripted steps first, then buffered data, then ReadError.
func (t *TestableSerialPort) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadCalls++

	if t.Closed {
		return 0, errPortClosed
	}

	if len(t.Script) > 0 {
		step := t.Script[0]
		t.Script = t.Script[1:]
		n := copy(p, step.Data)
		if n < len(step.Data) {
			t.Script = append([]ReadStep{{Data: step.Data[n:], Err: step.Err}}, t.Script...)
			return n, nil
		}
		return n, step.Err
	}

	if t.ReadBuffer.Len() > 0 {
		return t.ReadBuffer.Read(p)
	}

	if t.ReadError != nil {
		return 0, t.ReadError
	}
	return 0, nil
}

// Close marks the port as closed.
func (t *TestableSerialPort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Closed = true
	t.CloseCalls++
	return t.CloseError
}

var _ TimeoutSerialPorter = (*TestableSerialPort)(nil)

// SetReadTimeout implements TimeoutSerialPorter.
func (t *TestableSerialPort) SetReadTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadTimeout = timeout
	return nil
}

// AddReadData adds data to be returned by subsequent Read calls.
func (t *TestableSerialPort) AddReadData(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadBuffer.Write(data)
}

// MockOpener records Open calls and hands out a fixed port with the
// requested read timeout applied, as Open does.
type MockOpener struct {
	mu sync.Mutex

	// Port is the port to return from Open
	Port TimeoutSerialPorter

	// Error is returned by Open if set
	Error error

	// OpenCalls records all Open calls
	OpenCalls []MockOpenCall
}

// MockOpenCall records details of an Open call.
type MockOpenCall struct {
	Path        string
	Options     PortOptions
	ReadTimeout time.Duration
}

// NewMockOpener creates a MockOpener returning port.
func NewMockOpener(port TimeoutSerialPorter) *MockOpener {
	return &MockOpener{Port: port}
}

// Open matches the Opener signature.
func (m *MockOpener) Open(path string, opts PortOptions, readTimeout time.Duration) (TimeoutSerialPorter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.OpenCalls = append(m.OpenCalls, MockOpenCall{Path: path, Options: opts, ReadTimeout: readTimeout})
	if m.Error != nil {
		return nil, m.Error
	}
	if err := applyReadTimeout(m.Port, readTimeout); err != nil {
		return nil, err
	}
	return m.Port, nil
}

// LastCall returns the most recent Open call, or nil if none.
func (m *MockOpener) LastCall() *MockOpenCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.OpenCalls) == 0 {
		return nil
	}
	return &m.OpenCalls[len(m.OpenCalls)-1]
}
