// Package serialport reads newline-framed text from the rangefinder rig over
// a serial link, or from a recorded capture.
package serialport

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/banshee-data/polarscan/internal/monitoring"
)

// ErrTimeout is returned by ReadLine when the port read timed out before a
// full line arrived. It is not fatal.
var ErrTimeout = errors.New("serial read timeout")

// MaxLineLength caps a buffered line. Longer runs without a newline are
// handed out as-is and left to the decoder to reject.
const MaxLineLength = 256

// LineSource yields one line per call. It returns ErrTimeout on a read
// timeout, io.EOF at end of stream, or the transport error on failure.
type LineSource interface {
	ReadLine(ctx context.Context) (string, error)
	Close() error
}

// LineReader splits the byte stream of a port into lines. A partial line
// survives timeouts and is completed by later reads.
type LineReader struct {
	port SerialPorter
	buf  []byte
	eof  bool
}

// NewLineReader returns a LineReader over port.
func NewLineReader(port SerialPorter) *LineReader {
	return &LineReader{
		port: port,
		buf:  make([]byte, 0, MaxLineLength),
	}
}

// ReadLine returns the next line without its terminator.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	chunk := make([]byte, 64)
	for {
		if line, ok := r.next(); ok {
			return line, nil
		}
		if r.eof {
			if len(r.buf) > 0 {
				line := string(r.buf)
				r.buf = r.buf[:0]
				return line, nil
			}
			return "", io.EOF
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := r.port.Read(chunk)
		if n > 0 {
			r.buf = append(r.buf, chunk[:n]...)
		}
		switch {
		case errors.Is(err, io.EOF):
			r.eof = true
		case err != nil:
			return "", err
		case n == 0:
			return "", ErrTimeout
		}
	}
}

// next pops one complete line off the buffer.
func (r *LineReader) next() (string, bool) {
	i := bytes.IndexByte(r.buf, '\n')
	if i < 0 {
		if len(r.buf) >= MaxLineLength {
			monitoring.Warnf("no line terminator in %d bytes, splitting", len(r.buf))
			line := string(r.buf)
			r.buf = r.buf[:0]
			return line, true
		}
		return "", false
	}
	line := string(bytes.TrimRight(r.buf[:i], "\r"))
	r.buf = append(r.buf[:0], r.buf[i+1:]...)
	return line, true
}

// Close closes the underlying port.
func (r *LineReader) Close() error {
	return r.port.Close()
}
