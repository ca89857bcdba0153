package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/mirror"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
)

// TerminalPrompter asks on a line-oriented terminal.
//
//	y = yes, n = no, a = always (yes, don't ask again), v = never (no, don't ask again)
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalPrompter reads answers from in and writes questions to out.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

var verbs = map[mirror.Kind]string{
	mirror.KindMove:   "Move",
	mirror.KindCopy:   "Copy",
	mirror.KindDelete: "Delete",
}

func (t *TerminalPrompter) Ask(ctx context.Context, kind mirror.Kind, name string) (Answer, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Answer{}, err
		}
		q := fmt.Sprintf("%s the generated CSS for %s as well?", verbs[kind], name)
		fmt.Fprintf(t.out, "%s %s ", questionStyle.Render(q), hintStyle.Render("[y/n/a/v]"))
		line, err := t.in.ReadString('\n')
		if err != nil && line == "" {
			return Answer{}, ferrors.UsageError("no answer to relocation prompt").
				WithCause(err).
				WithContext("kind", string(kind)).
				Build()
		}
		if ans, ok := parseAnswer(line); ok {
			return ans, nil
		}
		fmt.Fprintln(t.out, hintStyle.Render("please answer y (yes), n (no), a (always) or v (never)"))
	}
}

func parseAnswer(s string) (Answer, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return Answer{Yes: true}, true
	case "n", "no", "":
		return Answer{}, true
	case "a", "always":
		return Answer{Yes: true, Remember: true}, true
	case "v", "never":
		return Answer{Remember: true}, true
	}
	return Answer{}, false
}
