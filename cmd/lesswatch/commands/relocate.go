package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/lesswatch/internal/confirm"
	"git.home.luguber.info/inful/lesswatch/internal/mirror"
	"git.home.luguber.info/inful/lesswatch/internal/source"
)

// RelocateCmd groups the relocation subcommands.
type RelocateCmd struct {
	Move   RelocateMoveCmd   `cmd:"" help:"Move output after a source was moved"`
	Copy   RelocateCopyCmd   `cmd:"" help:"Duplicate output after a source was copied"`
	Delete RelocateDeleteCmd `cmd:"" help:"Remove output of a deleted source"`
}

type relocateFlags struct {
	Profile string `short:"p" help:"Profile to use instead of the one owning the file"`
	Yes     bool   `short:"y" help:"Apply without asking"`
	DryRun  bool   `name:"dry-run" help:"Only print the planned relocations"`
}

// RelocateMoveCmd implements 'relocate move'.
type RelocateMoveCmd struct {
	Path  string        `arg:"" help:"New location of the source"`
	From  string        `required:"" help:"Directory the source was moved out of"`
	Flags relocateFlags `embed:""`
}

func (c *RelocateMoveCmd) Run(g *Global, root *CLI) error {
	return runRelocation(g, root, c.Flags, mirror.KindMove, c.Path, c.From)
}

// RelocateCopyCmd implements 'relocate copy'.
type RelocateCopyCmd struct {
	Path  string        `arg:"" help:"Location of the new copy"`
	From  string        `required:"" help:"Directory holding the original source"`
	Flags relocateFlags `embed:""`
}

func (c *RelocateCopyCmd) Run(g *Global, root *CLI) error {
	return runRelocation(g, root, c.Flags, mirror.KindCopy, c.Path, c.From)
}

// RelocateDeleteCmd implements 'relocate delete'.
type RelocateDeleteCmd struct {
	Path  string        `arg:"" help:"Location of the deleted source"`
	Flags relocateFlags `embed:""`
}

func (c *RelocateDeleteCmd) Run(g *Global, root *CLI) error {
	return runRelocation(g, root, c.Flags, mirror.KindDelete, c.Path, "")
}

func runRelocation(g *Global, root *CLI, flags relocateFlags, kind mirror.Kind, path, from string) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	p, f, err := profileFor(rt.profiles, flags.Profile, path)
	if err != nil {
		return err
	}

	var relocs []mirror.Relocation
	switch kind {
	case mirror.KindMove:
		relocs, err = mirror.PlanMove(p, f.Path(), source.Canonical(from))
	case mirror.KindCopy:
		relocs, err = mirror.PlanCopy(p, f.Path(), source.Canonical(from))
	default:
		relocs, err = mirror.PlanDelete(p, f.Path())
	}
	if err != nil {
		return err
	}
	if len(relocs) == 0 {
		fmt.Fprintln(g.Stdout, mutedStyle.Render("Nothing to relocate"))
		return nil
	}
	for _, r := range relocs {
		fmt.Fprintln(g.Stdout, r.String())
	}
	if flags.DryRun {
		return nil
	}

	state := cfg.ConfirmState()
	var prompter confirm.Prompter = confirm.NewTerminalPrompter(g.Stdin, g.Stderr)
	if flags.Yes {
		prompter = nil
		state = confirm.State{
			Move:   confirm.Policy{Do: true},
			Copy:   confirm.Policy{Do: true},
			Delete: confirm.Policy{Do: true},
		}
	}
	gate := confirm.NewGate(state, prompter, cfg.Relocation.PromptIntervalDuration())
	ok, err := gate.Confirm(context.Background(), kind, f.Name())
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(g.Stdout, mutedStyle.Render("Skipped"))
		return nil
	}
	if err := mirror.Apply(relocs); err != nil {
		return err
	}
	if h := rt.relocationHistory(); h != nil {
		h.RecordRelocations(uuid.NewString(), relocs)
	}
	fmt.Fprintln(g.Stdout, successStyle.Render(fmt.Sprintf("Applied %d relocation(s)", len(relocs))))
	return nil
}
