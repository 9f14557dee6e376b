// Package app wires the ambient stack around the stream passes:
// configuration, logging, the progress heartbeat and the optional config
// watcher. The passes themselves stay plain stdin to stdout filters.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/oleg-peresada/coyote/internal/config"
	"github.com/oleg-peresada/coyote/internal/pipeline"
	"github.com/oleg-peresada/coyote/internal/progress"
	"github.com/oleg-peresada/coyote/internal/resume"
	"github.com/oleg-peresada/coyote/internal/runtime/supervisor"
	"github.com/oleg-peresada/coyote/internal/summary"
	"github.com/oleg-peresada/coyote/pkg/logx"
)

// Options are the invocation knobs. Flag values override file values and
// stay in force across config reloads.
type Options struct {
	ConfigPath  string
	WatchConfig bool

	LogLevel  string
	ColorMode string
	Echo      *bool
}

type App struct {
	opts Options

	cfgm *config.Manager

	mu  sync.RWMutex
	cfg *config.Config

	log   logx.Logger
	logs  *logx.Service
	runID string

	tracker  *progress.Tracker
	reporter *progress.Reporter

	sup *supervisor.Supervisor
}

// color.NoColor is process-global; capture the library's own TTY and
// NO_COLOR detection once so "auto" can restore it after an override.
var autoNoColor = color.NoColor

func New(opts Options) (*App, error) {
	cfg := config.Default()
	var cfgm *config.Manager
	if strings.TrimSpace(opts.ConfigPath) != "" {
		cfgm = config.NewManager(opts.ConfigPath)
		loaded, err := cfgm.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	a := &App{
		opts:    opts,
		cfgm:    cfgm,
		cfg:     cfg,
		runID:   uuid.NewString(),
		tracker: &progress.Tracker{},
	}

	if err := a.validate(context.Background(), cfg); err != nil {
		return nil, err
	}

	logs, log := logx.New(a.logxConfig(cfg))
	a.logs = logs
	a.log = log.With(logx.String("comp", "app"), logx.String("run", a.runID))

	applyColorMode(a.effectiveColor(cfg))

	a.reporter = progress.NewReporter(a.tracker, a.passLogger("progress"))

	return a, nil
}

// Start brings up the heartbeat and, when asked, the config watcher. The
// stream passes run separately via RunFormat, RunDetect or RunPipeline.
func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log))

	cfg := a.current()
	if cfg.Progress.On() {
		if err := a.reporter.Start(cfg.Progress.EffectiveSchedule()); err != nil {
			return err
		}
	}

	if a.cfgm != nil && a.opts.WatchConfig {
		a.cfgm.SetLogger(a.logs.Logger().With(logx.String("comp", "config"), logx.String("run", a.runID)))
		a.cfgm.SetValidator(a.validate)

		sub := a.cfgm.Subscribe(8)
		a.sup.Go0("config.reload", func(c context.Context) {
			defer a.cfgm.Unsubscribe(sub)
			a.reloadLoop(c, sub)
		})
		a.sup.Go("config.watch", a.cfgm.Watch)
	}

	a.log.Debug("session started",
		logx.String("config", a.opts.ConfigPath),
		logx.Bool("watch", a.cfgm != nil && a.opts.WatchConfig))
	return nil
}

// Stop winds down the heartbeat and watcher, bounded by ctx.
func (a *App) Stop(ctx context.Context) error {
	a.reporter.Stop(ctx)

	var err error
	if a.sup != nil {
		err = a.sup.Stop(ctx)
	}

	s := a.tracker.Snapshot()
	a.log.Debug("session closed",
		logx.Uint64("lines", s.Lines),
		logx.Uint64("records", s.Records),
		logx.Uint64("anomalies", s.Anomalies))
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return err
}

// RunFormat normalizes the raw trace from in onto out.
func (a *App) RunFormat(ctx context.Context, in io.Reader, out io.Writer) error {
	bw := bufio.NewWriter(out)
	f := summary.New(bw, a.passLogger("format"), a.tracker)
	err := f.Run(ctx, in)
	if ferr := bw.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return a.finish("format", err)
}

// RunDetect runs the reschedule detector over already normalized lines.
func (a *App) RunDetect(ctx context.Context, in io.Reader, out io.Writer) error {
	bw := bufio.NewWriter(out)
	det := resume.New(bw, resume.Config{Echo: a.effectiveEcho()}, a.passLogger("detect"), a.tracker)
	err := det.Run(ctx, in)
	if ferr := bw.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return a.finish("detect", err)
}

// RunPipeline runs format and detect as one in-process pipe.
func (a *App) RunPipeline(ctx context.Context, in io.Reader, out io.Writer) error {
	bw := bufio.NewWriter(out)
	p := pipeline.New(resume.Config{Echo: a.effectiveEcho()}, a.logs.Logger().With(logx.String("run", a.runID)), a.tracker)
	res, err := p.Run(ctx, in, bw)
	if ferr := bw.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	if err == nil {
		a.log.Debug("pipeline result", logx.Int("parents", len(res.Registry)))
	}
	return a.finish("run", err)
}

// finish folds a pass error into the filter contract: exhausted input and
// interruption are clean exits, only real failures propagate.
func (a *App) finish(pass string, err error) error {
	s := a.tracker.Snapshot()
	fields := []logx.Field{
		logx.String("pass", pass),
		logx.Uint64("lines", s.Lines),
		logx.Uint64("records", s.Records),
		logx.Uint64("anomalies", s.Anomalies),
	}
	switch {
	case err == nil:
		a.log.Debug("pass finished", fields...)
		return nil
	case errors.Is(err, context.Canceled):
		a.log.Info("pass interrupted, stopping cleanly", fields...)
		return nil
	default:
		a.log.Error("pass failed", append(fields, logx.Err(err))...)
		return err
	}
}

func (a *App) reloadLoop(ctx context.Context, sub chan *config.Config) {
	lastApplied := a.current()
	for {
		select {
		case <-ctx.Done():
			return
		case newCfg, ok := <-sub:
			if !ok {
				return
			}
			// Coalesce bursts: keep only the latest config in the channel.
			for {
				select {
				case newer := <-sub:
					if newer != nil {
						newCfg = newer
					}
				default:
					goto APPLY
				}
			}
		APPLY:
			sections, attrs := config.SummarizeChange(lastApplied, newCfg)
			lastApplied = newCfg
			a.setCurrent(newCfg)
			if len(sections) == 0 {
				a.log.Debug("config reload received, but no effective changes detected")
				continue
			}
			a.applySections(ctx, newCfg, sections)
			fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
			a.log.Info("config reloaded", fields...)
		}
	}
}

func (a *App) applySections(ctx context.Context, cfg *config.Config, sections []string) {
	for _, s := range sections {
		switch s {
		case "logging":
			a.logs.Apply(a.logxConfig(cfg))
		case "report":
			applyColorMode(a.effectiveColor(cfg))
		case "detect":
			// Passes capture detect settings when they start; a new echo
			// value applies from the next run.
		case "progress":
			stopCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			a.reporter.Stop(stopCtx)
			cancel()
			if cfg.Progress.On() {
				if err := a.reporter.Start(cfg.Progress.EffectiveSchedule()); err != nil {
					a.log.Warn("heartbeat restart failed", logx.Err(err))
				}
			}
		}
	}
}

func (a *App) validate(_ context.Context, cfg *config.Config) error {
	if _, err := config.NormalizeColor(a.effectiveColor(cfg)); err != nil {
		return err
	}
	if cfg.Progress.On() {
		if err := progress.ValidateSchedule(cfg.Progress.EffectiveSchedule()); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) current() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *App) setCurrent(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
}

func (a *App) passLogger(name string) logx.Logger {
	return a.logs.Logger().With(logx.String("comp", name), logx.String("run", a.runID))
}

func (a *App) logxConfig(cfg *config.Config) logx.Config {
	lc := logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
	if strings.TrimSpace(a.opts.LogLevel) != "" {
		lc.Level = a.opts.LogLevel
	}
	return lc
}

// effectiveColor resolves the color mode, flag first, then file.
func (a *App) effectiveColor(cfg *config.Config) string {
	if strings.TrimSpace(a.opts.ColorMode) != "" {
		return a.opts.ColorMode
	}
	return cfg.Report.Color
}

func (a *App) effectiveEcho() bool {
	if a.opts.Echo != nil {
		return *a.opts.Echo
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg.Detect.Echo
}

func applyColorMode(mode string) {
	m, err := config.NormalizeColor(mode)
	if err != nil {
		return
	}
	switch m {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	default:
		color.NoColor = autoNoColor
	}
}
