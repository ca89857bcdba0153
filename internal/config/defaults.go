package config

import (
	"git.home.luguber.info/inful/lesswatch/internal/confirm"
	"git.home.luguber.info/inful/lesswatch/internal/notify"
	"git.home.luguber.info/inful/lesswatch/internal/transform"
)

// Default values applied before the file is decoded.
const (
	DefaultEngineTimeout = "30s"
	DefaultDebounce      = "100ms"
)

// Default returns a configuration with every default applied and no profiles.
func Default() *Config {
	state := confirm.DefaultState()
	return &Config{
		Version: CurrentVersion,
		Engine: EngineConfig{
			Kind:    EngineExec,
			Command: transform.DefaultCommand,
			Timeout: DefaultEngineTimeout,
		},
		Relocation: RelocationConfig{
			Move:           state.Move,
			Copy:           state.Copy,
			Delete:         state.Delete,
			PromptInterval: confirm.DefaultPromptInterval.String(),
		},
		Daemon: DaemonConfig{
			Debounce:         DefaultDebounce,
			IgnoreGitignored: true,
		},
		NATS: NATSConfig{
			Subject: notify.DefaultSubject,
		},
		Logging: LoggingConfig{Level: LogLevelInfo},
	}
}

// normalize canonicalizes enum spellings and fills values a file may have
// blanked explicitly.
func (c *Config) normalize() {
	c.Engine.Kind = engineKinds.normalize(c.Engine.Kind)
	c.Logging.Level = logLevels.normalize(c.Logging.Level)
	if c.Engine.Kind == EngineExec && c.Engine.Command == "" {
		c.Engine.Command = transform.DefaultCommand
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = notify.DefaultSubject
	}
	if c.Version == "" {
		c.Version = CurrentVersion
	}
}
