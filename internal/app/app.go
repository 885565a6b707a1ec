// Package app wires config, logging, cache store, prober, and renderer into
// the one-shot pipeline and owns the exit semantics: one status line on
// stdout and exit 0, or a logged failure, a stderr message, and exit 1.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"flux/internal/config"
	"flux/internal/render"
	"flux/pkg/logx"
	"flux/pkg/speedtest"
)

// Options are the CLI-level overrides of the configured behavior.
type Options struct {
	// Force skips the freshness check and probes unconditionally.
	Force bool

	// Format overrides output.format when non-empty.
	Format string

	// Verbose raises the log level to debug and enables the console sink.
	Verbose bool
}

// App is one assembled pipeline run. Construction resolves everything that
// can fail before the external tool is involved: config, sinks, cache path,
// renderer.
type App struct {
	cfg      *config.Config
	opts     Options
	log      logx.Logger
	logs     *logx.Service
	source   *speedtest.Source
	renderer render.Renderer

	// Out receives the status line; os.Stdout outside of tests.
	Out io.Writer
}

// New loads the config at cfgPath and assembles the pipeline.
func New(cfgPath string, opts Options) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, opts)
}

// NewWithConfig assembles the pipeline for an already-loaded config.
func NewWithConfig(cfg *config.Config, opts Options) (*App, error) {
	logCfg := logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Journal: cfg.Logging.Journal,
	}
	if opts.Verbose {
		logCfg.Level = "debug"
		logCfg.Console = true
	}
	logs, log := logx.New(logCfg)
	log = log.With(logx.String("run_id", shortRunID()))

	cachePath, err := ResolveCachePath(cfg)
	if err != nil {
		log.Error("run failed", logx.String("stage", speedtest.Stage(err)), logx.Err(err))
		_ = logs.Close()
		return nil, err
	}

	ttl, err := cfg.TTL()
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	timeout, err := cfg.ProbeTimeout()
	if err != nil {
		_ = logs.Close()
		return nil, err
	}

	store := speedtest.NewFileStore(cachePath)
	store.Atomic = cfg.Cache.Atomic

	format := cfg.Output.Format
	if opts.Format != "" {
		format = opts.Format
	}
	renderer, err := render.New(render.Options{
		Format: format,
		Glyph:  cfg.Output.Glyph,
		Thresholds: render.Thresholds{
			GoodMaxMs:    cfg.Output.Bands.GoodMaxMs,
			WarningMaxMs: cfg.Output.Bands.WarningMaxMs,
		},
		GoodColor:    cfg.Output.Bands.GoodColor,
		WarningColor: cfg.Output.Bands.WarningColor,
		BadColor:     cfg.Output.Bands.BadColor,
		NoColor:      !isatty.IsTerminal(os.Stdout.Fd()),
	})
	if err != nil {
		_ = logs.Close()
		return nil, err
	}

	return &App{
		cfg:  cfg,
		opts: opts,
		log:  log,
		logs: logs,
		source: &speedtest.Source{
			Cache: store,
			Prober: &speedtest.CommandProber{
				Command: cfg.Speedtest.Command,
				Args:    cfg.Speedtest.Args,
				Timeout: timeout,
			},
			TTL: ttl,
			Log: log,
		},
		renderer: renderer,
		Out:      os.Stdout,
	}, nil
}

// ResolveCachePath picks the cache file location: the cache.file override
// wins; otherwise <user cache dir>/flux/speed.toml. A missing cache base is
// an environment failure, surfaced before any process invocation.
func ResolveCachePath(cfg *config.Config) (string, error) {
	if cfg.Cache.File != "" {
		return cfg.Cache.File, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", speedtest.ErrEnvironment, err)
	}
	return filepath.Join(base, "flux", "speed.toml"), nil
}

// Store exposes the cache store for the cache inspection subcommands.
func (a *App) Store() speedtest.Store { return a.source.Cache }

// TTL exposes the parsed staleness threshold.
func (a *App) TTL() time.Duration { return a.source.TTL }

// Run executes the pipeline once. On success exactly one line is written to
// Out; on failure nothing is, and the error identifies the failing stage.
func (a *App) Run(ctx context.Context) error {
	defer a.logs.Close()

	var (
		m   *speedtest.Measurement
		err error
	)
	if a.opts.Force {
		a.log.Info("freshness check skipped (--force)")
		m, err = a.source.Refresh(ctx)
	} else {
		var origin speedtest.Origin
		m, origin, err = a.source.Measure(ctx)
		if err == nil {
			a.log.Debug("measurement ready", logx.String("origin", string(origin)))
		}
	}
	if err != nil {
		a.log.Error("run failed", logx.String("stage", speedtest.Stage(err)), logx.Err(err))
		return fmt.Errorf("%s: %w", speedtest.Stage(err), err)
	}

	fmt.Fprintln(a.Out, a.renderer.Render(m))
	return nil
}

func shortRunID() string {
	return uuid.NewString()[:8]
}
