package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"git.home.luguber.info/inful/lesswatch/internal/eventstore"
	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Since time.Duration `help:"How far back to look" default:"24h"`
	Limit int           `short:"n" help:"Maximum number of jobs to show" default:"20"`
	JSON  bool          `name:"json" help:"Print JSON instead of a table"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Daemon.HistoryDB == "" {
		return ferrors.ConfigError("job history is disabled").
			WithContext("hint", "set daemon.history_db in the configuration").
			UserAction().
			Build()
	}
	rt, err := newRuntime(cfg, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	projection := eventstore.NewJobHistoryProjection(rt.store, h.Limit)
	if err := projection.Rebuild(context.Background(), time.Now().Add(-h.Since)); err != nil {
		return err
	}
	jobs := projection.History()

	if h.JSON {
		enc := json.NewEncoder(g.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(jobs)
	}
	if len(jobs) == 0 {
		fmt.Fprintln(g.Stdout, mutedStyle.Render("No jobs recorded"))
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		}).
		Headers("STARTED", "PROFILE", "TRIGGER", "STATUS", "FILES", "CHANGED", "DURATION")
	for _, j := range jobs {
		t.Row(
			j.StartedAt.Local().Format(time.DateTime),
			j.Profile,
			j.Trigger,
			j.Status,
			strconv.Itoa(j.FileCount),
			strconv.Itoa(len(j.ChangedFiles)),
			j.Duration.Round(time.Millisecond).String(),
		)
	}
	fmt.Fprintln(g.Stdout, t.String())
	return nil
}
