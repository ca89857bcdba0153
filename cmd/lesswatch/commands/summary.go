package commands

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB950"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B949E"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// summaryObserver prints one line per finished job.
type summaryObserver struct {
	mu  sync.Mutex
	out io.Writer
}

func newSummaryObserver(out io.Writer) *summaryObserver {
	return &summaryObserver{out: out}
}

func (s *summaryObserver) OnEvent(j *compile.Job, e compile.Event) {
	fin, ok := e.(compile.Finished)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := compile.Summary(fin.Count)
	style := successStyle
	if fin.Count == 0 {
		style = mutedStyle
	}
	if j.Err() != nil {
		msg = "Compilation failed after " + msg
	}
	fmt.Fprintf(s.out, "[%s] %s\n", j.Profile().Name, style.Render(msg))
}
