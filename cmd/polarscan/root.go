package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/banshee-data/polarscan/internal/acquire"
	"github.com/banshee-data/polarscan/internal/config"
	"github.com/banshee-data/polarscan/internal/fsutil"
	"github.com/banshee-data/polarscan/internal/monitoring"
	"github.com/banshee-data/polarscan/internal/render"
	"github.com/banshee-data/polarscan/internal/serialport"
	"github.com/banshee-data/polarscan/internal/timeutil"
	"github.com/banshee-data/polarscan/internal/units"
	"github.com/banshee-data/polarscan/internal/version"
)

// options holds the raw flag values. They override the config file only
// when set on the command line.
type options struct {
	configPath     string
	port           string
	baud           int
	replay         string
	replayInterval time.Duration
	renderer       string
	output         string
	maxRange       float64
	readTimeout    time.Duration
	logLevel       string
	units          string
	hold           bool
	listPorts      bool
}

// environment carries the process dependencies so tests can swap them.
type environment struct {
	fs        fsutil.FileSystem
	open      serialport.Opener
	listPorts func() ([]string, error)
	clock     timeutil.Clock
	stdin     io.Reader
	stdout    io.Writer
	logger    *zap.SugaredLogger
	newRunID  func() string
}

func defaultEnvironment() *environment {
	return &environment{
		fs:        fsutil.OSFileSystem{},
		open:      serialport.Open,
		listPorts: serialport.ListPorts,
		clock:     timeutil.RealClock{},
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		logger:    monitoring.Logger(),
		newRunID:  uuid.NewString,
	}
}

func newRootCommand(env *environment) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "polarscan",
		Short: "Render a live polar map from a rotating IR rangefinder.",
		Long: `Reads "<angle>,<adc>" lines from the rangefinder rig over a serial port,
converts each ADC code to a distance with the sensor curve, and keeps the
latest distance per angle on a polar map.

The map is written to --output (PNG, SVG or PDF by extension, or HTML with
--renderer html) and refreshed as readings arrive. The run ends on Ctrl+C,
at the end of a --replay capture, or when the serial link fails.`,
		Version:       version.Short(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := run(cmd.Context(), cmd, opts, env)
			if err != nil {
				env.logger.Errorf("polarscan: %v", err)
			}
			return err
		},
	}
	cmd.SetVersionTemplate("polarscan " + version.Full() + "\n")

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML or JSON configuration file")
	f.StringVarP(&opts.port, "port", "p", config.DefaultPort(), "serial port to read from (ignored with --replay)")
	f.IntVarP(&opts.baud, "baud", "b", serialport.DefaultBaudRate, "serial baud rate")
	f.StringVar(&opts.replay, "replay", "", "replay a recorded capture file instead of opening a port")
	f.DurationVar(&opts.replayInterval, "replay-interval", 0, "delay between replayed lines")
	f.StringVarP(&opts.renderer, "renderer", "r", render.KindPlot, "renderer: png, html or none")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default depends on renderer)")
	f.Float64Var(&opts.maxRange, "max-range", render.DefaultMaxRange, "maximum plotted distance in cm")
	f.DurationVar(&opts.readTimeout, "read-timeout", serialport.DefaultReadTimeout, "serial read timeout")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	f.StringVar(&opts.units, "units", units.CM, "display units for logs: "+units.GetValidUnitsString())
	f.BoolVar(&opts.hold, "hold", false, "wait for Enter before exiting; the output file is kept either way")
	f.BoolVar(&opts.listPorts, "list-ports", false, "list serial ports and exit")

	return cmd
}

// loadConfig reads the config file, if any, and lays explicitly set flags
// over it.
func loadConfig(cmd *cobra.Command, opts *options, fsys fsutil.FileSystem) (*config.ScanConfig, error) {
	cfg := config.Empty()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadFS(fsys, opts.configPath); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Port = &opts.port
	}
	if f.Changed("baud") {
		cfg.BaudRate = &opts.baud
	}
	if f.Changed("renderer") {
		cfg.Renderer = &opts.renderer
	}
	if f.Changed("output") {
		cfg.Output = &opts.output
	}
	if f.Changed("max-range") {
		cfg.MaxRange = &opts.maxRange
	}
	if f.Changed("read-timeout") {
		s := opts.readTimeout.String()
		cfg.ReadTimeout = &s
	}
	if f.Changed("units") {
		cfg.Units = &opts.units
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cobra.Command, opts *options, env *environment) error {
	if opts.listPorts {
		return printPorts(env)
	}

	lvl, ok := monitoring.ParseLevel(opts.logLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", opts.logLevel)
	}
	monitoring.SetLevel(lvl)

	cfg, err := loadConfig(cmd, opts, env.fs)
	if err != nil {
		return err
	}

	runID := env.newRunID()
	logger := env.logger.With("run_id", runID)

	curve, err := cfg.SensorCurve()
	if err != nil {
		return err
	}
	converter, err := units.NewConverter(cfg.Calibration(), curve)
	if err != nil {
		return err
	}

	port, err := openSource(cfg, opts, env, logger)
	if err != nil {
		return err
	}

	layout := cfg.Layout()
	layout.Subtitle = "run " + shortID(runID)
	sink, err := render.Open(cfg.GetRenderer(), env.fs, cfg.GetOutput(), layout)
	if err != nil {
		port.Close()
		return err
	}
	driver := render.NewDriver(sink,
		render.WithClock(env.clock),
		render.WithPumpPause(cfg.GetPumpInterval()))

	logger.Debugf("curve %v, window [%.2f, %.2f] V", converter.Curve(), cfg.Calibration().WindowMin, cfg.Calibration().WindowMax)

	pipeline := acquire.New(serialport.NewLineReader(port), converter, driver,
		acquire.WithLogger(logger),
		acquire.WithClock(env.clock),
		acquire.WithDisplayUnits(cfg.GetUnits()))
	runErr := pipeline.Run(ctx)

	if out := cfg.GetOutput(); cfg.GetRenderer() != render.KindNone && out != "" {
		logger.Infof("scan written to %s", out)
	}

	if opts.hold {
		fmt.Fprintln(env.stdout, "press Enter to exit")
		_, _ = bufio.NewReader(env.stdin).ReadString('\n')
	}
	return runErr
}

func openSource(cfg *config.ScanConfig, opts *options, env *environment, logger *zap.SugaredLogger) (serialport.TimeoutSerialPorter, error) {
	if opts.replay != "" {
		port, err := serialport.OpenReplay(env.fs, opts.replay, env.clock, opts.replayInterval)
		if err != nil {
			return nil, err
		}
		logger.Infof("replaying %s", opts.replay)
		return port, nil
	}

	name := cfg.GetPort()
	port, err := env.open(name, cfg.PortOptions(), cfg.GetReadTimeout())
	if err != nil {
		return nil, err
	}
	logger.Infof("listening on %s (%s)", name, cfg.PortOptions())
	return port, nil
}

func printPorts(env *environment) error {
	ports, err := env.listPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(env.stdout, "no serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Fprintln(env.stdout, p)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
