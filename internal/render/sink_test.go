package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/polarscan/internal/fsutil"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestPlotSink_RendersOnlyWhenDirty(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	sink, err := NewPlotSink(fs, "out/scan.png", DefaultLayout())
	require.NoError(t, err)

	require.NoError(t, sink.Pump())
	assert.False(t, fs.Exists("out/scan.png"), "clean sink must not render")

	h := sink.SetPoint(DegToRad(90), 22.6)
	require.NoError(t, sink.Pump())
	data, err := fs.ReadFile("out/scan.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic), "output should be a PNG")
	assert.Equal(t, 1, fs.Writes("out/scan.png"))

	require.NoError(t, sink.Pump())
	assert.Equal(t, 1, fs.Writes("out/scan.png"), "unchanged sink must not re-render")

	sink.ClearPoint(h)
	require.NoError(t, sink.Pump())
	assert.Equal(t, 2, fs.Writes("out/scan.png"))

	require.NoError(t, sink.Close())
	assert.Equal(t, 2, fs.Writes("out/scan.png"), "close after a clean pump writes nothing")
}

func TestPlotSink_CloseWritesEmptyChart(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	sink, err := NewPlotSink(fs, "scan.svg", DefaultLayout())
	require.NoError(t, err)

	require.NoError(t, sink.Close())
	data, err := fs.ReadFile("scan.svg")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestPlotSink_OutOfRangePointsStillTracked(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	sink, err := NewPlotSink(fs, "scan.png", Layout{MaxRange: 10})
	require.NoError(t, err)

	sink.SetPoint(0, 50)
	sink.SetPoint(0, -5)
	require.NoError(t, sink.Pump())
	assert.Len(t, sink.points.points, 2)
	assert.True(t, fs.Exists("scan.png"))
}

func TestNewPlotSink_Errors(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	_, err := NewPlotSink(fs, "scan.gif", DefaultLayout())
	assert.ErrorContains(t, err, "unsupported plot format")

	_, err = NewPlotSink(fs, "scan.png", Layout{MaxRange: -1})
	assert.ErrorIs(t, err, errBadLayout)
}

func TestEChartsSink_Render(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	layout := DefaultLayout()
	layout.Subtitle = "run=abc"
	sink, err := NewEChartsSink(fs, "scan.html", layout)
	require.NoError(t, err)

	sink.SetPoint(DegToRad(0), 18.8)
	sink.SetPoint(DegToRad(90), 22.6)
	sink.SetPoint(DegToRad(180), 500) // beyond max range, not drawn
	require.NoError(t, sink.Pump())

	data, err := fs.ReadFile("scan.html")
	require.NoError(t, err)
	html := string(data)
	assert.True(t, strings.Contains(html, "echarts"), "page should load echarts")
	assert.Contains(t, html, "run=abc points=2")
	assert.Equal(t, "scan.html", sink.Path())

	require.NoError(t, sink.Pump())
	assert.Equal(t, 1, fs.Writes("scan.html"))
}

func TestEChartsSink_CloseWritesEmptyChart(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	sink, err := NewEChartsSink(fs, "scan.html", DefaultLayout())
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	assert.True(t, fs.Exists("scan.html"))
}

func TestOpen(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()

	sink, err := Open("", fs, "", DefaultLayout())
	require.NoError(t, err)
	require.IsType(t, &PlotSink{}, sink)
	assert.Equal(t, "polarscan.png", sink.(*PlotSink).Path())

	sink, err = Open("echarts", fs, "live.html", DefaultLayout())
	require.NoError(t, err)
	assert.IsType(t, &EChartsSink{}, sink)

	sink, err = Open("none", fs, "", DefaultLayout())
	require.NoError(t, err)
	assert.IsType(t, &Recorder{}, sink)

	_, err = Open("opengl", fs, "", DefaultLayout())
	assert.Error(t, err)
}
