// Package config loads scan settings from a JSON or YAML file. Every field is
// optional; the Get* accessors supply defaults for anything left unset.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/polarscan/internal/fsutil"
	"github.com/banshee-data/polarscan/internal/monitoring"
	"github.com/banshee-data/polarscan/internal/render"
	"github.com/banshee-data/polarscan/internal/serialport"
	"github.com/banshee-data/polarscan/internal/units"
)

// DefaultConfigPath is the sample configuration shipped with the repository.
const DefaultConfigPath = "config/polarscan.example.yaml"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// CurveConfig selects and parameterises the sensor curve.
type CurveConfig struct {
	Model       *string  `json:"model,omitempty" yaml:"model,omitempty"`
	K           *float64 `json:"k,omitempty" yaml:"k,omitempty"`
	Offset      *float64 `json:"offset,omitempty" yaml:"offset,omitempty"`
	Coefficient *float64 `json:"coefficient,omitempty" yaml:"coefficient,omitempty"`
	Exponent    *float64 `json:"exponent,omitempty" yaml:"exponent,omitempty"`
}

// ScanConfig is the root configuration.
type ScanConfig struct {
	// Transport
	Port        *string `json:"port,omitempty" yaml:"port,omitempty"`
	BaudRate    *int    `json:"baud_rate,omitempty" yaml:"baud_rate,omitempty"`
	DataBits    *int    `json:"data_bits,omitempty" yaml:"data_bits,omitempty"`
	StopBits    *int    `json:"stop_bits,omitempty" yaml:"stop_bits,omitempty"`
	Parity      *string `json:"parity,omitempty" yaml:"parity,omitempty"`
	ReadTimeout *string `json:"read_timeout,omitempty" yaml:"read_timeout,omitempty"` // duration string like "1s"

	// Conversion
	ADCMax    *int         `json:"adc_max,omitempty" yaml:"adc_max,omitempty"`
	VRef      *float64     `json:"vref,omitempty" yaml:"vref,omitempty"`
	Curve     *CurveConfig `json:"curve,omitempty" yaml:"curve,omitempty"`
	WindowMin *float64     `json:"window_min,omitempty" yaml:"window_min,omitempty"`
	WindowMax *float64     `json:"window_max,omitempty" yaml:"window_max,omitempty"`

	// Rendering
	PumpInterval *string  `json:"pump_interval,omitempty" yaml:"pump_interval,omitempty"` // duration string like "10ms"
	MaxRange     *float64 `json:"max_range,omitempty" yaml:"max_range,omitempty"`
	Renderer     *string  `json:"renderer,omitempty" yaml:"renderer,omitempty"`
	Output       *string  `json:"output,omitempty" yaml:"output,omitempty"`
	Title        *string  `json:"title,omitempty" yaml:"title,omitempty"`
	Units        *string  `json:"units,omitempty" yaml:"units,omitempty"`
}

// Empty returns a ScanConfig with every field unset.
func Empty() *ScanConfig {
	return &ScanConfig{}
}

// LoadFS reads a config file from fsys. The format follows the extension:
// .json, .yaml or .yml. Fields omitted from the file keep their defaults.
func LoadFS(fsys fsutil.FileSystem, path string) (*ScanConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filepath.Base(cleanPath), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	monitoring.Logf("loaded config %s", cleanPath)
	return cfg, nil
}

// Validate checks the values that are set.
func (c *ScanConfig) Validate() error {
	if c.ReadTimeout != nil && *c.ReadTimeout != "" {
		if d, err := time.ParseDuration(*c.ReadTimeout); err != nil || d <= 0 {
			return fmt.Errorf("%w: read_timeout %q must be a positive duration", ErrInvalid, *c.ReadTimeout)
		}
	}
	if c.PumpInterval != nil && *c.PumpInterval != "" {
		if d, err := time.ParseDuration(*c.PumpInterval); err != nil || d < 0 {
			return fmt.Errorf("%w: pump_interval %q must be a non-negative duration", ErrInvalid, *c.PumpInterval)
		}
	}

	if _, err := c.PortOptions().Normalize(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Calibration().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.SensorCurve(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if c.MaxRange != nil && (!(*c.MaxRange > 0) || math.IsInf(*c.MaxRange, 1)) {
		return fmt.Errorf("%w: max_range must be positive, got %g", ErrInvalid, *c.MaxRange)
	}
	if c.Renderer != nil {
		if _, err := render.ParseKind(*c.Renderer); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if c.Units != nil && !units.IsValid(*c.Units) {
		return fmt.Errorf("%w: units must be one of %s, got %q", ErrInvalid, units.GetValidUnitsString(), *c.Units)
	}
	return nil
}

// DefaultPort returns the conventional USB serial device for the platform.
func DefaultPort() string {
	if runtime.GOOS == "windows" {
		return "COM3"
	}
	return "/dev/ttyUSB0"
}

// GetPort returns the port value or the platform default.
func (c *ScanConfig) GetPort() string {
	if c.Port == nil || *c.Port == "" {
		return DefaultPort()
	}
	return *c.Port
}

// PortOptions returns the serial parameters. Unset fields are left zero for
// serialport.PortOptions.Normalize to fill.
func (c *ScanConfig) PortOptions() serialport.PortOptions {
	var opts serialport.PortOptions
	if c.BaudRate != nil {
		opts.BaudRate = *c.BaudRate
	}
	if c.DataBits != nil {
		opts.DataBits = *c.DataBits
	}
	if c.StopBits != nil {
		opts.StopBits = *c.StopBits
	}
	if c.Parity != nil {
		opts.Parity = *c.Parity
	}
	return opts
}

// GetReadTimeout parses and returns ReadTimeout as a time.Duration.
func (c *ScanConfig) GetReadTimeout() time.Duration {
	if c.ReadTimeout == nil || *c.ReadTimeout == "" {
		return serialport.DefaultReadTimeout
	}
	d, err := time.ParseDuration(*c.ReadTimeout)
	if err != nil || d <= 0 {
		return serialport.DefaultReadTimeout
	}
	return d
}

// GetPumpInterval parses and returns PumpInterval as a time.Duration.
func (c *ScanConfig) GetPumpInterval() time.Duration {
	if c.PumpInterval == nil || *c.PumpInterval == "" {
		return render.DefaultPumpPause
	}
	d, err := time.ParseDuration(*c.PumpInterval)
	if err != nil || d < 0 {
		return render.DefaultPumpPause
	}
	return d
}

// Calibration returns the ADC and window settings.
func (c *ScanConfig) Calibration() units.Calibration {
	cal := units.DefaultCalibration()
	if c.ADCMax != nil {
		cal.ADCMax = *c.ADCMax
	}
	if c.VRef != nil {
		cal.VRef = *c.VRef
	}
	if c.WindowMin != nil {
		cal.WindowMin = *c.WindowMin
	}
	if c.WindowMax != nil {
		cal.WindowMax = *c.WindowMax
	}
	return cal
}

// SensorCurve builds the configured curve. The inverse model defaults to the
// GP2D12 fit; the power model needs both of its parameters.
func (c *ScanConfig) SensorCurve() (units.Curve, error) {
	cc := c.Curve
	if cc == nil {
		return units.DefaultCurve(), nil
	}

	var name string
	if cc.Model != nil {
		name = *cc.Model
	}
	model, err := units.ParseCurveModel(name)
	if err != nil {
		return nil, err
	}

	switch model {
	case units.ModelPower:
		if cc.Coefficient == nil || cc.Exponent == nil {
			return nil, errors.New("power curve needs coefficient and exponent")
		}
		if !finite(*cc.Coefficient) || !finite(*cc.Exponent) {
			return nil, errors.New("power curve coefficient and exponent must be finite")
		}
		return units.PowerCurve{Coefficient: *cc.Coefficient, Exponent: *cc.Exponent}, nil
	default:
		curve := units.InverseCurve{K: units.GP2D12K, Offset: units.GP2D12Offset}
		if cc.K != nil {
			curve.K = *cc.K
		}
		if cc.Offset != nil {
			curve.Offset = *cc.Offset
		}
		if curve.K == 0 {
			return nil, errors.New("inverse curve k must be non-zero")
		}
		if !finite(curve.K) || !finite(curve.Offset) {
			return nil, errors.New("inverse curve k and offset must be finite")
		}
		return curve, nil
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// GetMaxRange returns the plot radius or the default.
func (c *ScanConfig) GetMaxRange() float64 {
	if c.MaxRange == nil {
		return render.DefaultMaxRange
	}
	return *c.MaxRange
}

// GetRenderer returns the renderer kind or the default.
func (c *ScanConfig) GetRenderer() string {
	if c.Renderer == nil {
		return render.KindPlot
	}
	kind, err := render.ParseKind(*c.Renderer)
	if err != nil {
		return render.KindPlot
	}
	return kind
}

// GetOutput returns the output path, defaulting by renderer kind.
func (c *ScanConfig) GetOutput() string {
	if c.Output == nil || *c.Output == "" {
		return render.DefaultOutput(c.GetRenderer())
	}
	return *c.Output
}

// GetUnits returns the display units or centimetres.
func (c *ScanConfig) GetUnits() string {
	if c.Units == nil || !units.IsValid(*c.Units) {
		return units.CM
	}
	return *c.Units
}

// Layout returns the sink layout.
func (c *ScanConfig) Layout() render.Layout {
	layout := render.DefaultLayout()
	layout.MaxRange = c.GetMaxRange()
	if c.Title != nil && *c.Title != "" {
		layout.Title = *c.Title
	}
	return layout
}
