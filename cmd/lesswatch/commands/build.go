package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
	"git.home.luguber.info/inful/lesswatch/internal/logfields"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Profiles []string `short:"p" name:"profile" help:"Only build these profiles"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, runtimeOptions{notify: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	profiles, err := selectProfiles(rt.profiles, b.Profiles)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var errs []error
	for _, p := range profiles {
		if !p.Active() {
			slog.Info("Skipping profile without output directories", logfields.Profile(p.Name))
			continue
		}
		res, err := compile.Build(ctx, p, rt.engine, compile.WithObservers(rt.observers...))
		if err != nil {
			errs = append(errs, err)
		}
		msg := compile.Summary(len(res.Changed))
		fmt.Fprintf(g.Stdout, "[%s] %s\n", p.Name, successStyle.Render(msg))
	}
	return errors.Join(errs...)
}
