// Package acquire runs the read, decode, convert, update and render loop that
// turns a serial line stream into a live polar scan.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/banshee-data/polarscan/internal/frame"
	"github.com/banshee-data/polarscan/internal/monitoring"
	"github.com/banshee-data/polarscan/internal/render"
	"github.com/banshee-data/polarscan/internal/scan"
	"github.com/banshee-data/polarscan/internal/serialport"
	"github.com/banshee-data/polarscan/internal/timeutil"
	"github.com/banshee-data/polarscan/internal/units"
)

// Pipeline owns the line source, the scan table and the render driver for
// one run. It is single-use: Run may be called once.
type Pipeline struct {
	source    serialport.LineSource
	converter *units.Converter
	driver    *render.Driver
	table     *scan.Table
	logger    *zap.SugaredLogger
	clock     timeutil.Clock
	unit      string

	state   State
	stats   Stats
	started time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default is the monitoring package logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock sets the clock used to time the run.
func WithClock(c timeutil.Clock) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithDisplayUnits sets the units used in the trace and summary logs.
func WithDisplayUnits(unit string) Option {
	return func(p *Pipeline) {
		if units.IsValid(unit) {
			p.unit = unit
		}
	}
}

// New assembles a pipeline. The table is created here and draws through
// driver.
func New(source serialport.LineSource, converter *units.Converter, driver *render.Driver, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:    source,
		converter: converter,
		driver:    driver,
		table:     scan.NewTable(driver),
		logger:    monitoring.Logger(),
		clock:     timeutil.RealClock{},
		unit:      units.CM,
		state:     Running,
		stats:     newStats(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current lifecycle phase.
func (p *Pipeline) State() State { return p.state }

// Stats returns a copy of the counters.
func (p *Pipeline) Stats() Stats { return p.stats.clone() }

// Table returns the scan table.
func (p *Pipeline) Table() *scan.Table { return p.table }

// Run loops until the context is cancelled, the stream ends or the transport
// fails. Every exit drains: one final redraw, then the source and sink are
// closed. Only a transport or render failure is returned.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.state != Running {
		return fmt.Errorf("pipeline already %s", p.state)
	}
	p.started = p.clock.Now()

	var runErr error
	for p.state == Running {
		if ctx.Err() != nil {
			p.logger.Info("stopped by user")
			p.state = Draining
			break
		}

		line, err := p.source.ReadLine(ctx)
		switch {
		case err == nil:
			p.stats.Lines++
			if !p.handle(line) {
				continue
			}
			if err := p.driver.Pump(); err != nil {
				p.logger.Errorf("render error: %v", err)
				runErr = fmt.Errorf("render: %w", err)
				p.state = Draining
			}
		case errors.Is(err, serialport.ErrTimeout):
			p.stats.Timeouts++
		case errors.Is(err, io.EOF):
			p.logger.Info("end of stream")
			p.state = Draining
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			p.logger.Info("stopped by user")
			p.state = Draining
		default:
			p.logger.Errorf("serial error: %v", err)
			runErr = fmt.Errorf("read serial: %w", err)
			p.state = Draining
		}
	}

	return p.drain(runErr)
}

// handle decodes, converts and stores one line. It reports whether the table
// changed.
func (p *Pipeline) handle(line string) bool {
	res := frame.Decode(line)
	if !res.OK() {
		p.stats.Rejected[res.Reason]++
		p.logger.Debugf("discarded line %q: %s", line, res.Reason)
		return false
	}

	obs := p.converter.Convert(res.Reading)
	if !obs.Valid {
		p.stats.OutOfWindow++
		p.logger.Debugf("angle=%d° adc=%d voltage=%.3fV out of window", obs.Angle, obs.RawCode, obs.Voltage)
		return false
	}

	p.logger.Debugf("angle=%d° adc=%d distance=%.2f %s",
		obs.Angle, obs.RawCode, units.ConvertDistance(obs.Distance, p.unit), p.unit)

	if _, replaced := p.table.Upsert(obs.Angle, obs.Distance); replaced {
		p.stats.Replaced++
	}
	p.stats.Accepted++
	return true
}

func (p *Pipeline) drain(runErr error) error {
	p.state = Draining

	if err := p.driver.Flush(); err != nil {
		p.logger.Errorf("final render: %v", err)
		if runErr == nil {
			runErr = fmt.Errorf("final render: %w", err)
		}
	}

	p.logger.Infof("scan: %s", scan.Summarize(p.table.Snapshot()).Format(p.unit))
	p.stats.Elapsed = p.clock.Since(p.started)
	p.logger.Infof("stats: %s", p.stats)
	p.logger.Infof("ran for %s", p.stats.Elapsed)

	if err := p.source.Close(); err != nil {
		p.logger.Warnf("close source: %v", err)
	}
	if err := p.driver.Close(); err != nil {
		p.logger.Warnf("close renderer: %v", err)
		if runErr == nil {
			runErr = fmt.Errorf("close renderer: %w", err)
		}
	}

	p.state = Stopped
	return runErr
}
