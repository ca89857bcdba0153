package commands

import (
	"fmt"

	"git.home.luguber.info/inful/lesswatch/internal/resolver"
	"git.home.luguber.info/inful/lesswatch/internal/source"
)

// DepsCmd implements the 'deps' command.
type DepsCmd struct {
	File       string `arg:"" help:"Source file whose dependents are listed"`
	Profile    string `short:"p" help:"Profile to use instead of the one owning the file"`
	FirstLevel bool   `name:"first-level" help:"Only list files importing the file directly"`
	All        bool   `help:"Include files excluded from compilation"`
}

func (d *DepsCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	p, f, err := profileFor(cfg.ToProfiles(), d.Profile, d.File)
	if err != nil {
		return err
	}

	pass := resolver.NewPass(p)
	var deps []source.File
	switch {
	case d.FirstLevel:
		deps, err = pass.FirstLevelDependents(f)
	case d.All:
		deps, err = pass.Closure(f)
	default:
		deps, err = pass.DependentsRecursive(f)
	}
	if err != nil {
		return err
	}

	for _, dep := range deps {
		rel, err := p.Rel(dep)
		if err != nil {
			rel = dep.Path()
		}
		fmt.Fprintln(g.Stdout, rel)
	}
	return nil
}
