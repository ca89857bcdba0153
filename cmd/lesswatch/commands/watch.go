package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
	"git.home.luguber.info/inful/lesswatch/internal/confirm"
	"git.home.luguber.info/inful/lesswatch/internal/daemon"
	"git.home.luguber.info/inful/lesswatch/internal/logfields"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	NoPrompt      bool          `name:"no-prompt" help:"Apply the configured relocation policy without asking"`
	BuildFirst    bool          `name:"build-first" help:"Build every profile before watching"`
	MetricsAddr   string        `name:"metrics-addr" help:"Serve /metrics and /healthz on this address (overrides config)"`
	SweepInterval time.Duration `name:"sweep-interval" help:"Rebuild everything on this interval (overrides config)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	metricsAddr := cfg.Daemon.MetricsAddr
	if w.MetricsAddr != "" {
		metricsAddr = w.MetricsAddr
	}
	sweep := cfg.Daemon.SweepDuration()
	if w.SweepInterval > 0 {
		sweep = w.SweepInterval
	}

	rt, err := newRuntime(cfg, runtimeOptions{metrics: metricsAddr != "", notify: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	var prompter confirm.Prompter
	if !w.NoPrompt {
		prompter = confirm.NewTerminalPrompter(g.Stdin, g.Stderr)
	}
	gate := confirm.NewGate(cfg.ConfirmState(), prompter, cfg.Relocation.PromptIntervalDuration())

	opts := daemon.Options{
		Profiles:         rt.profiles,
		Engine:           rt.engine,
		Observers:        rt.observers,
		Gate:             gate,
		Registry:         rt.registry,
		Recorder:         rt.recorder,
		Debounce:         cfg.Daemon.DebounceDuration(),
		SweepInterval:    sweep,
		MetricsAddr:      metricsAddr,
		IgnoreGitignored: cfg.Daemon.IgnoreGitignored,
	}
	if h := rt.relocationHistory(); h != nil {
		opts.History = h
	}
	d, err := daemon.New(opts)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if w.BuildFirst {
		for _, p := range rt.profiles {
			if !p.Active() {
				continue
			}
			if _, err := compile.Build(ctx, p, rt.engine, compile.WithObservers(rt.observers...)); err != nil {
				slog.Error("Initial build failed", logfields.Profile(p.Name), logfields.Error(err))
			}
		}
	}

	slog.Info("Starting watch mode", slog.Int("profiles", len(rt.profiles)))
	return d.Run(ctx)
}
