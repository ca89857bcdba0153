package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/lesswatch/internal/confirm"
	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/profile"
)

// CurrentVersion is the only configuration schema version understood.
const CurrentVersion = "1"

// Config represents the application configuration.
type Config struct {
	Version    string           `yaml:"version"`
	Profiles   []ProfileConfig  `yaml:"profiles"`
	Engine     EngineConfig     `yaml:"engine"`
	Relocation RelocationConfig `yaml:"relocation"`
	Daemon     DaemonConfig     `yaml:"daemon"`
	NATS       NATSConfig       `yaml:"nats"`
	Logging    LoggingConfig    `yaml:"logging"`

	// dir is the directory of the loaded file; relative paths resolve against it.
	dir string
}

// ProfileConfig describes one source tree and where its output goes.
type ProfileConfig struct {
	Name       string   `yaml:"name"`
	SourceDir  string   `yaml:"source_dir"`
	OutputDirs []string `yaml:"output_dirs"`
	Include    string   `yaml:"include,omitempty"`
	Exclude    string   `yaml:"exclude,omitempty"`
	Compress   bool     `yaml:"compress,omitempty"`
}

// EngineConfig selects the transform engine.
type EngineConfig struct {
	Kind    EngineKind `yaml:"kind"`
	Command string     `yaml:"command,omitempty"`
	Args    []string   `yaml:"args,omitempty"`
	Timeout string     `yaml:"timeout,omitempty"`
}

// RelocationConfig holds the confirmation policy for moved, copied and
// deleted sources.
type RelocationConfig struct {
	Move           confirm.Policy `yaml:"move"`
	Copy           confirm.Policy `yaml:"copy"`
	Delete         confirm.Policy `yaml:"delete"`
	PromptInterval string         `yaml:"prompt_interval,omitempty"`
}

// DaemonConfig configures the watch daemon.
type DaemonConfig struct {
	Debounce         string `yaml:"debounce,omitempty"`
	SweepInterval    string `yaml:"sweep_interval,omitempty"`
	MetricsAddr      string `yaml:"metrics_addr,omitempty"`
	HistoryDB        string `yaml:"history_db,omitempty"`
	IgnoreGitignored bool   `yaml:"ignore_gitignored"`
}

// NATSConfig configures job event broadcasting.
type NATSConfig struct {
	Enabled   bool   `yaml:"enabled"`
	URL       string `yaml:"url,omitempty"`
	Subject   string `yaml:"subject,omitempty"`
	JetStream bool   `yaml:"jetstream,omitempty"`
}

// LoggingConfig configures the default log level.
type LoggingConfig struct {
	Level LogLevel `yaml:"level,omitempty"`
}

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	loadEnvFiles(filepath.Dir(path))

	data, err := os.ReadFile(path) //nolint:gosec // path is operator supplied
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("path", path).
				WithContext("hint", "run lesswatch init to create one").
				UserAction().
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			WithContext("path", path).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid configuration").
			WithContext("path", path).
			Build()
	}

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to resolve config directory").Build()
	}
	cfg.dir = abs

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML after environment expansion. Absent fields keep their
// defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").Build()
	}
	cfg.normalize()
	return cfg, nil
}

// Resolve returns p made absolute against the configuration directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	base := c.dir
	if base == "" {
		base = "."
	}
	return filepath.Join(base, p)
}

// ToProfiles builds the runtime profiles in configuration order.
func (c *Config) ToProfiles() []*profile.Profile {
	out := make([]*profile.Profile, 0, len(c.Profiles))
	for _, pc := range c.Profiles {
		roots := make([]string, 0, len(pc.OutputDirs))
		for _, d := range pc.OutputDirs {
			roots = append(roots, c.Resolve(d))
		}
		out = append(out, profile.New(pc.Name, c.Resolve(pc.SourceDir), roots, pc.Include, pc.Exclude, pc.Compress))
	}
	return out
}

// ConfirmState is the relocation policy as a confirmation gate state.
func (c *Config) ConfirmState() confirm.State {
	return confirm.State{Move: c.Relocation.Move, Copy: c.Relocation.Copy, Delete: c.Relocation.Delete}
}

// PromptIntervalDuration returns the parsed relocation prompt interval.
func (r RelocationConfig) PromptIntervalDuration() time.Duration {
	return mustDuration(r.PromptInterval, confirm.DefaultPromptInterval)
}

// TimeoutDuration returns the per-file engine timeout; zero means none.
func (e EngineConfig) TimeoutDuration() time.Duration {
	return mustDuration(e.Timeout, 0)
}

// DebounceDuration returns how long the daemon waits for a burst of events to settle.
func (d DaemonConfig) DebounceDuration() time.Duration {
	return mustDuration(d.Debounce, 0)
}

// SweepDuration returns the full recompile interval; zero disables the sweep.
func (d DaemonConfig) SweepDuration() time.Duration {
	return mustDuration(d.SweepInterval, 0)
}

func mustDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// Init creates a new configuration file with example content.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists").
			WithContext("path", path).
			WithContext("hint", "use --force to overwrite").
			UserAction().
			Build()
	}

	example := Default()
	example.Profiles = []ProfileConfig{
		{
			Name:       "site",
			SourceDir:  "less",
			OutputDirs: []string{"public/css"},
			Exclude:    "_*",
		},
		{
			Name:       "admin",
			SourceDir:  "admin/less",
			OutputDirs: []string{"admin/public/css", "build/admin/css"},
			Include:    "*.less",
			Exclude:    "mixins/*;_*",
			Compress:   true,
		},
	}
	example.Daemon.MetricsAddr = "127.0.0.1:9464"
	example.Daemon.HistoryDB = ".lesswatch/history.db"
	example.NATS.URL = "${NATS_URL}"

	data, err := yaml.Marshal(example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal config").Build()
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // config files are world-readable
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", path).
			Build()
	}
	return nil
}
