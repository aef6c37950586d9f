package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/polarscan/internal/fsutil"
	"github.com/banshee-data/polarscan/internal/monitoring"
)

const (
	plotSize   = 7 * vg.Inch
	ringCount  = 4
	spokeEvery = 30 // degrees
)

var plotFormats = map[string]string{
	".png":  "png",
	".svg":  "svg",
	".pdf":  "pdf",
	".jpg":  "jpg",
	".jpeg": "jpeg",
	".tif":  "tif",
	".tiff": "tiff",
}

var (
	pointColor = color.RGBA{B: 255, A: 255}
	gridColor  = color.Gray{Y: 200}
)

// PlotSink renders the scan to an image file with gonum/plot. The file is
// rewritten on each Pump that follows a change; the format follows the file
// extension.
type PlotSink struct {
	fs      fsutil.FileSystem
	path    string
	format  string
	layout  Layout
	points  pointSet
	renders int
}

// NewPlotSink returns a sink writing to path.
func NewPlotSink(fs fsutil.FileSystem, path string, layout Layout) (*PlotSink, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := plotFormats[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported plot format %q for %s", ext, path)
	}
	return &PlotSink{
		fs:     fs,
		path:   path,
		format: format,
		layout: layout,
		points: newPointSet(),
	}, nil
}

func (s *PlotSink) SetPoint(theta, r float64) Handle { return s.points.add(theta, r) }

func (s *PlotSink) ClearPoint(h Handle) { s.points.remove(h) }

// Pump re-renders the image when points changed since the last render.
func (s *PlotSink) Pump() error {
	if !s.points.dirty {
		return nil
	}
	if err := s.render(); err != nil {
		return err
	}
	s.points.dirty = false
	return nil
}

// Close writes any pending change. A sink that never rendered writes an empty
// chart so the output always exists after a run.
func (s *PlotSink) Close() error {
	if s.renders == 0 {
		s.points.dirty = true
	}
	return s.Pump()
}

// Path returns the output file.
func (s *PlotSink) Path() string { return s.path }

func (s *PlotSink) render() error {
	p := plot.New()
	p.Title.Text = s.layout.Title
	if s.layout.Subtitle != "" {
		p.Title.Text += "\n" + s.layout.Subtitle
	}
	limit := s.layout.MaxRange
	p.X.Min, p.X.Max = -limit, limit
	p.Y.Min, p.Y.Max = -limit, limit
	p.X.Label.Text = "East (cm)"
	p.Y.Label.Text = "North (cm)"

	if err := s.addGrid(p); err != nil {
		return err
	}

	pts := make(plotter.XYs, 0, len(s.points.points))
	for _, pt := range s.points.sorted() {
		if !pt.InRange(limit) {
			continue
		}
		x, y := pt.XY()
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	if len(pts) > 0 {
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("build scatter: %w", err)
		}
		scatter.GlyphStyle.Color = pointColor
		scatter.GlyphStyle.Radius = vg.Points(3)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
	}

	w, err := p.WriterTo(plotSize, plotSize, s.format)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.format, err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode %s: %w", s.format, err)
	}
	if err := fsutil.WriteFileAtomic(s.fs, s.path, buf.Bytes(), 0644); err != nil {
		return err
	}
	s.renders++
	monitoring.Debugf("rendered %d points to %s", len(s.points.points), s.path)
	return nil
}

// addGrid draws range rings and compass spokes with north at the top.
func (s *PlotSink) addGrid(p *plot.Plot) error {
	limit := s.layout.MaxRange
	for i := 1; i <= ringCount; i++ {
		r := limit * float64(i) / ringCount
		ring := make(plotter.XYs, 0, 73)
		for deg := 0; deg <= 360; deg += 5 {
			x, y := Point{Theta: DegToRad(deg), R: r}.XY()
			ring = append(ring, plotter.XY{X: x, Y: y})
		}
		line, err := plotter.NewLine(ring)
		if err != nil {
			return fmt.Errorf("build ring: %w", err)
		}
		line.Color = gridColor
		line.Width = vg.Points(0.5)
		p.Add(line)
	}

	labels := plotter.XYLabels{}
	for deg := 0; deg < 360; deg += spokeEvery {
		x, y := Point{Theta: DegToRad(deg), R: limit}.XY()
		spoke, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: x, Y: y}})
		if err != nil {
			return fmt.Errorf("build spoke: %w", err)
		}
		spoke.Color = gridColor
		spoke.Width = vg.Points(0.5)
		p.Add(spoke)

		lx, ly := Point{Theta: DegToRad(deg), R: limit * 0.92}.XY()
		labels.XYs = append(labels.XYs, plotter.XY{X: roundTiny(lx), Y: roundTiny(ly)})
		labels.Labels = append(labels.Labels, fmt.Sprintf("%d°", deg))
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return fmt.Errorf("build labels: %w", err)
	}
	p.Add(l)
	return nil
}

// roundTiny snaps floating point residue from sin/cos to zero.
func roundTiny(v float64) float64 {
	if math.Abs(v) < 1e-9 {
		return 0
	}
	return v
}
