package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/lesswatch/internal/config"
	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/profile"
	"git.home.luguber.info/inful/lesswatch/internal/source"
)

// Global carries the process streams so commands can be tested.
type Global struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultGlobal uses the process streams.
func DefaultGlobal() *Global {
	return &Global{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// CLI definition and global flags.
type CLI struct {
	Config   string           `short:"c" help:"Configuration file path" default:"lesswatch.yaml" env:"LESSWATCH_CONFIG"`
	Verbose  bool             `short:"v" help:"Enable verbose logging"`
	LogLevel string           `name:"log-level" help:"Log level (debug, info, warn, error)" env:"LESSWATCH_LOG_LEVEL"`
	Version  kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
	Compile  CompileCmd  `cmd:"" help:"Compile a source file and everything that depends on it"`
	Build    BuildCmd    `cmd:"" help:"Compile every source of every profile"`
	Deps     DepsCmd     `cmd:"" help:"List the sources depending on a file"`
	Watch    WatchCmd    `cmd:"" help:"Watch sources and recompile on change"`
	Relocate RelocateCmd `cmd:"" help:"Move, copy or delete the mirrored output of a source"`
	History  HistoryCmd  `cmd:"" help:"Show recent compile jobs"`
}

// AfterApply runs after flag parsing; set up logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	setupLogging(c.level(""))
	return nil
}

func (c *CLI) level(configured config.LogLevel) slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	lvl := configured
	if c.LogLevel != "" {
		lvl = config.NormalizeLogLevel(c.LogLevel)
	}
	switch lvl {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupLogging(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadConfig reads the configuration and applies its log level unless a
// flag or the environment already chose one.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if !c.Verbose && c.LogLevel == "" {
		setupLogging(c.level(cfg.Logging.Level))
	}
	return cfg, nil
}

// selectProfiles returns the named profiles, or all of them when names is empty.
func selectProfiles(all []*profile.Profile, names []string) ([]*profile.Profile, error) {
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]*profile.Profile, len(all))
	for _, p := range all {
		byName[p.Name] = p
	}
	out := make([]*profile.Profile, 0, len(names))
	for _, n := range names {
		p, ok := byName[n]
		if !ok {
			return nil, unknownProfile(n, all)
		}
		out = append(out, p)
	}
	return out, nil
}

// profileFor finds the profile owning path, or the named one.
func profileFor(all []*profile.Profile, name, path string) (*profile.Profile, source.File, error) {
	f := source.New(path)
	if name != "" {
		ps, err := selectProfiles(all, []string{name})
		if err != nil {
			return nil, f, err
		}
		if !ps[0].Contains(f) {
			return nil, f, ferrors.UsageError("file is outside the profile's source directory").
				WithContext("file", f.Path()).
				WithContext("profile", name).
				Build()
		}
		return ps[0], f, nil
	}
	p := profile.Lookup(all, f)
	if p == nil {
		return nil, f, ferrors.NotFoundError("no profile contains the file").
			WithContext("file", f.Path()).
			Build()
	}
	return p, f, nil
}

func unknownProfile(name string, all []*profile.Profile) error {
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, p.Name)
	}
	return ferrors.NotFoundError("unknown profile").
		WithContext("profile", name).
		WithContext("profiles", strings.Join(names, ", ")).
		Build()
}
