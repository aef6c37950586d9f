package serialport

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_SplitsLines(t *testing.T) {
	port := NewTestableSerialPort()
	port.AddReadData([]byte("0,1500\r\n90,1500\r\n\r\n0,1800\n"))
	port.ReadError = io.EOF
	r := NewLineReader(port)
	ctx := context.Background()

	var got []string
	for {
		line, err := r.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, line)
	}
	assert.Equal(t, []string{"0,1500", "90,1500", "", "0,1800"}, got)
}

func TestLineReader_TimeoutKeepsPartialLine(t *testing.T) {
	port := NewTestableSerialPort()
	port.Script = []ReadStep{
		{Data: "45,"},
		{},
		{Data: "2000\r\n"},
	}
	r := NewLineReader(port)
	ctx := context.Background()

	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrTimeout)

	line, err := r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "45,2000", line)
}

func TestLineReader_TrailingLineAtEOF(t *testing.T) {
	port := NewTestableSerialPort()
	port.Script = []ReadStep{{Data: "30,1200", Err: io.EOF}}
	r := NewLineReader(port)

	line, err := r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "30,1200", line)

	_, err = r.ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	_, err = r.ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF, "EOF is sticky")
}

func TestLineReader_TransportError(t *testing.T) {
	boom := errors.New("device unplugged")
	port := NewTestableSerialPort()
	port.Script = []ReadStep{{Data: "15,900\n"}, {Err: boom}}
	r := NewLineReader(port)

	line, err := r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "15,900", line)

	_, err = r.ReadLine(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestLineReader_ContextCancelled(t *testing.T) {
	port := NewTestableSerialPort()
	port.AddReadData([]byte("0,1500\n"))
	r := NewLineReader(port)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, port.ReadCalls)
}

func TestLineReader_OverlongLine(t *testing.T) {
	port := NewTestableSerialPort()
	junk := strings.Repeat("x", MaxLineLength+10)
	port.AddReadData([]byte(junk + "\n0,1500\n"))
	r := NewLineReader(port)
	ctx := context.Background()

	first, err := r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Len(t, first, MaxLineLength)

	second, err := r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 10), second)

	third, err := r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0,1500", third)
}

func TestLineReader_Close(t *testing.T) {
	port := NewTestableSerialPort()
	r := NewLineReader(port)
	require.NoError(t, r.Close())
	assert.True(t, port.Closed)
}
