package daemon

import (
	"context"
	"log/slog"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
	"git.home.luguber.info/inful/lesswatch/internal/confirm"
	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/logfields"
	"git.home.luguber.info/inful/lesswatch/internal/metrics"
	"git.home.luguber.info/inful/lesswatch/internal/profile"
	"git.home.luguber.info/inful/lesswatch/internal/version"
	"git.home.luguber.info/inful/lesswatch/internal/watch"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Daemon.
type Options struct {
	Profiles  []*profile.Profile
	Engine    compile.Engine
	Observers []compile.Observer
	Gate      *confirm.Gate
	History   RelocationRecorder

	// Registry receives lesswatch and runtime metrics. Nil disables metrics.
	Registry *prom.Registry
	Recorder metrics.Recorder

	Debounce         time.Duration
	SweepInterval    time.Duration
	MetricsAddr      string
	IgnoreGitignored bool
}

// Daemon watches every active profile and keeps its outputs current.
type Daemon struct {
	opts       Options
	dispatcher *Dispatcher
	startedAt  time.Time
}

// New validates opts and wires the dispatcher.
func New(opts Options) (*Daemon, error) {
	if opts.Engine == nil {
		return nil, ferrors.ValidationError("daemon requires a transform engine").Build()
	}
	active := 0
	for _, p := range opts.Profiles {
		if p.Active() {
			active++
		}
	}
	if active == 0 {
		return nil, ferrors.ValidationError("no active profile to watch").
			WithContext("hint", "give at least one profile an output directory").
			UserAction().
			Build()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}

	return &Daemon{
		opts:      opts,
		startedAt: time.Now(),
		dispatcher: NewDispatcher(DispatcherOptions{
			Profiles:  opts.Profiles,
			Engine:    opts.Engine,
			Observers: opts.Observers,
			Gate:      opts.Gate,
			Recorder:  opts.Recorder,
			History:   opts.History,
			Debounce:  opts.Debounce,
		}),
	}, nil
}

// Dispatcher returns the event dispatcher.
func (d *Daemon) Dispatcher() *Dispatcher { return d.dispatcher }

// Run watches until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	var roots []string
	for _, p := range d.opts.Profiles {
		if p.Active() {
			roots = append(roots, p.SourceRoot)
		}
	}
	w, err := watch.New(roots, watch.WithGitignore(d.opts.IgnoreGitignored))
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	d.dispatcher.Start(ctx)
	defer d.stopDispatcher()

	if d.opts.SweepInterval > 0 {
		s, err := NewScheduler()
		if err != nil {
			return err
		}
		if _, err := s.ScheduleEvery("sweep", d.opts.SweepInterval, d.dispatcher.Sweep); err != nil {
			return err
		}
		s.Start()
		defer func() {
			if err := s.Stop(); err != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	if d.opts.MetricsAddr != "" && d.opts.Registry != nil {
		registerRuntimeCollectors(d.opts.Registry)
		srv := NewHTTPServer(d.opts.MetricsAddr, d.opts.Registry, d.Health)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				slog.Warn("HTTP shutdown failed", logfields.Error(err))
			}
		}()
	}

	watchErr := make(chan error, 1)
	go func() { watchErr <- w.Run(ctx) }()

	slog.Info("Watching for changes", slog.Int("roots", len(roots)), slog.String("version", version.Version))
	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping daemon")
			return nil
		case err := <-watchErr:
			return err
		case ev := <-w.Events():
			d.dispatcher.Dispatch(ev)
		}
	}
}

func (d *Daemon) stopDispatcher() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.dispatcher.Stop(ctx); err != nil {
		slog.Warn("Workers did not stop in time", logfields.Error(err))
	}
}

// Health reports daemon state for /healthz.
func (d *Daemon) Health() HealthResponse {
	resp := HealthResponse{
		Status:    "healthy",
		Version:   version.Version,
		StartedAt: d.startedAt,
		Uptime:    time.Since(d.startedAt).Round(time.Second).String(),
	}
	guard := d.dispatcher.Guard()
	for _, p := range d.opts.Profiles {
		resp.Profiles = append(resp.Profiles, ProfileHealth{
			Name:   p.Name,
			Active: p.Active(),
			Busy:   guard.NeedsToWait(p.Name),
		})
	}
	return resp
}

func registerRuntimeCollectors(reg *prom.Registry) {
	for _, c := range []prom.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			slog.Debug("Runtime collector already registered", logfields.Error(err))
		}
	}
}
