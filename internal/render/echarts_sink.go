package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/polarscan/internal/fsutil"
	"github.com/banshee-data/polarscan/internal/monitoring"
)

// EChartsSink renders the scan as a standalone HTML page using go-echarts.
// Points are projected polar->XY with north up so the axes stay square.
type EChartsSink struct {
	fs      fsutil.FileSystem
	path    string
	layout  Layout
	points  pointSet
	renders int
}

// NewEChartsSink returns a sink writing an HTML page to path.
func NewEChartsSink(fs fsutil.FileSystem, path string, layout Layout) (*EChartsSink, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &EChartsSink{
		fs:     fs,
		path:   path,
		layout: layout,
		points: newPointSet(),
	}, nil
}

func (s *EChartsSink) SetPoint(theta, r float64) Handle { return s.points.add(theta, r) }

func (s *EChartsSink) ClearPoint(h Handle) { s.points.remove(h) }

// Pump re-renders the page when points changed since the last render.
func (s *EChartsSink) Pump() error {
	if !s.points.dirty {
		return nil
	}
	if err := s.render(); err != nil {
		return err
	}
	s.points.dirty = false
	return nil
}

// Close writes any pending change, or an empty chart if nothing was rendered.
func (s *EChartsSink) Close() error {
	if s.renders == 0 {
		s.points.dirty = true
	}
	return s.Pump()
}

// Path returns the output file.
func (s *EChartsSink) Path() string { return s.path }

func (s *EChartsSink) render() error {
	limit := s.layout.MaxRange

	data := make([]opts.ScatterData, 0, len(s.points.points))
	for _, pt := range s.points.sorted() {
		if !pt.InRange(limit) {
			continue
		}
		x, y := pt.XY()
		data = append(data, opts.ScatterData{Value: []interface{}{x, y, pt.R}})
	}

	// Force a square plot by using equal width/height and symmetric axis ranges
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: s.layout.Title, Theme: "dark", Width: "800px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: s.layout.Title, Subtitle: strings.TrimSpace(fmt.Sprintf("%s points=%d", s.layout.Subtitle, len(data)))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -limit, Max: limit, Name: "East (cm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -limit, Max: limit, Name: "North (cm)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("scan", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.fs, s.path, buf.Bytes(), 0644); err != nil {
		return err
	}
	s.renders++
	monitoring.Debugf("rendered %d points to %s", len(s.points.points), s.path)
	return nil
}
