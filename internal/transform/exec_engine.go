package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/logfields"
)

// DefaultCommand is the compiler invoked when none is configured.
const DefaultCommand = "lessc"

// ExecEngine runs an external compiler once per file. Calls are serialized.
type ExecEngine struct {
	Command string
	Args    []string
	Timeout time.Duration

	mu       sync.Mutex
	lookPath func(string) (string, error)
}

// NewExecEngine returns an engine for command (DefaultCommand when empty).
func NewExecEngine(command string, args []string, timeout time.Duration) *ExecEngine {
	if command == "" {
		command = DefaultCommand
	}
	return &ExecEngine{Command: command, Args: args, Timeout: timeout, lookPath: exec.LookPath}
}

// Compile implements compile.Engine. Failures reported by the compiler come
// back as *compile.TransformError.
func (e *ExecEngine) Compile(ctx context.Context, src, location string, compress bool) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bin, err := e.lookPath(e.Command)
	if err != nil {
		return "", ferrors.TransformError("stylesheet compiler not available").
			WithCause(fmt.Errorf("%w: %w", ErrEngineNotFound, err)).
			WithContext("command", e.Command).
			Fatal().
			Build()
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, e.buildArgs(location, compress)...) //nolint:gosec // command comes from operator configuration
	cmd.Dir = filepath.Dir(location)
	cmd.WaitDelay = time.Second
	cmd.Stdin = strings.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	slog.Debug("Invoking stylesheet compiler",
		"command", bin,
		logfields.Source(location))
	err = cmd.Run()
	slog.Debug("Stylesheet compiler returned",
		logfields.Source(location),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ferrors.TransformError("stylesheet compiler timed out").
				WithCause(ErrEngineTimeout).
				WithContext("file", location).
				WithContext("timeout", e.Timeout.String()).
				Build()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", ferrors.TransformError("cannot run stylesheet compiler").
				WithCause(err).
				WithContext("command", bin).
				Build()
		}
		output := stderr.String()
		if strings.TrimSpace(output) == "" {
			output = stdout.String()
		}
		te := ParseCompilerOutput(output)
		if te.Filename == "" || te.Filename == "-" || te.Filename == "input" {
			te.Filename = location
		}
		return "", te
	}
	if s := stderr.String(); s != "" {
		slog.Warn("Stylesheet compiler wrote to stderr",
			logfields.Source(location),
			"error_output", s)
	}
	return stdout.String(), nil
}

func (e *ExecEngine) buildArgs(location string, compress bool) []string {
	args := make([]string, 0, len(e.Args)+4)
	args = append(args, "--no-color", "--include-path="+filepath.Dir(location))
	if compress {
		args = append(args, "--compress")
	}
	args = append(args, e.Args...)
	return append(args, "-")
}
