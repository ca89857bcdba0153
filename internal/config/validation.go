package config

import (
	"os"
	"time"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
)

// Validate checks the decoded configuration, in order of dependency.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateVersion,
		c.validateProfiles,
		c.validateEngine,
		c.validateDurations,
		c.validateNATS,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateVersion() error {
	if c.Version != CurrentVersion {
		return ferrors.ValidationError("unsupported configuration version").
			WithContext("version", c.Version).
			WithContext("supported", CurrentVersion).
			Build()
	}
	return logLevels.validate(c.Logging.Level)
}

func (c *Config) validateProfiles() error {
	if len(c.Profiles) == 0 {
		return ferrors.ValidationError("at least one profile must be configured").Build()
	}

	names := make(map[string]bool, len(c.Profiles))
	for i, p := range c.Profiles {
		if p.Name == "" {
			return ferrors.ValidationError("profile name cannot be empty").
				WithContext("index", i).
				Build()
		}
		if names[p.Name] {
			return ferrors.ValidationError("duplicate profile name").
				WithContext("profile", p.Name).
				Build()
		}
		names[p.Name] = true

		if p.SourceDir == "" {
			return ferrors.ValidationError("profile source_dir is required").
				WithContext("profile", p.Name).
				Build()
		}
		dir := c.Resolve(p.SourceDir)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return ferrors.ValidationError("profile source_dir is not a directory").
				WithContext("profile", p.Name).
				WithContext("path", dir).
				WithCause(err).
				Build()
		}
		for _, out := range p.OutputDirs {
			if out == "" {
				return ferrors.ValidationError("profile output_dirs contains an empty entry").
					WithContext("profile", p.Name).
					Build()
			}
		}
	}
	return nil
}

func (c *Config) validateEngine() error {
	if err := engineKinds.validate(c.Engine.Kind); err != nil {
		return err
	}
	if c.Engine.Kind == EngineExec && c.Engine.Command == "" {
		return ferrors.ValidationError("engine command is required").Build()
	}
	return nil
}

func (c *Config) validateDurations() error {
	fields := []struct {
		name  string
		value string
	}{
		{"engine.timeout", c.Engine.Timeout},
		{"relocation.prompt_interval", c.Relocation.PromptInterval},
		{"daemon.debounce", c.Daemon.Debounce},
		{"daemon.sweep_interval", c.Daemon.SweepInterval},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		d, err := time.ParseDuration(f.value)
		if err != nil || d < 0 {
			return ferrors.ValidationError("invalid duration").
				WithContext("field", f.name).
				WithContext("value", f.value).
				WithCause(err).
				Build()
		}
	}
	return nil
}

func (c *Config) validateNATS() error {
	if c.NATS.Enabled && c.NATS.URL == "" {
		return ferrors.ValidationError("nats.url is required when nats is enabled").Build()
	}
	return nil
}
