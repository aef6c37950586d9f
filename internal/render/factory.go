package render

import (
	"fmt"
	"strings"

	"github.com/banshee-data/polarscan/internal/fsutil"
)

// Renderer kinds accepted by Open.
const (
	KindPlot = "png"
	KindHTML = "html"
	KindNone = "none"
)

// DefaultOutput returns the default output file for a renderer kind.
func DefaultOutput(kind string) string {
	switch kind {
	case KindHTML:
		return "polarscan.html"
	case KindNone:
		return ""
	default:
		return "polarscan.png"
	}
}

// ParseKind normalises a renderer name.
func ParseKind(s string) (string, error) {
	switch k := strings.ToLower(strings.TrimSpace(s)); k {
	case "", KindPlot, "plot", "image":
		return KindPlot, nil
	case KindHTML, "echarts":
		return KindHTML, nil
	case KindNone, "headless":
		return KindNone, nil
	default:
		return "", fmt.Errorf("unsupported renderer %q: expected %s, %s or %s", s, KindPlot, KindHTML, KindNone)
	}
}

// Open builds the sink for kind. An empty path selects DefaultOutput(kind).
func Open(kind string, fs fsutil.FileSystem, path string, layout Layout) (Sink, error) {
	kind, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = DefaultOutput(kind)
	}
	switch kind {
	case KindHTML:
		return NewEChartsSink(fs, path, layout)
	case KindNone:
		if err := layout.Validate(); err != nil {
			return nil, err
		}
		return NewRecorder(), nil
	default:
		return NewPlotSink(fs, path, layout)
	}
}
