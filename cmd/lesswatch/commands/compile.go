package commands

import (
	"context"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
)

// CompileCmd implements the 'compile' command.
type CompileCmd struct {
	File    string `arg:"" help:"Source file that changed" type:"existingfile"`
	Profile string `short:"p" help:"Profile to use instead of the one owning the file"`
}

func (c *CompileCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, runtimeOptions{notify: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	p, f, err := profileFor(rt.profiles, c.Profile, c.File)
	if err != nil {
		return err
	}
	observers := append([]compile.Observer{newSummaryObserver(g.Stdout)}, rt.observers...)
	job := compile.NewJob(f, p, rt.engine, compile.WithObservers(observers...))
	return job.Compile(context.Background())
}
