package config

import (
	"git.home.luguber.info/inful/lesswatch/internal/compile"
	"git.home.luguber.info/inful/lesswatch/internal/transform"
)

// NewEngine builds the configured transform engine.
func (c *Config) NewEngine() compile.Engine {
	if c.Engine.Kind == EngineCopy {
		return transform.CopyEngine{}
	}
	return transform.NewExecEngine(c.Engine.Command, c.Engine.Args, c.Engine.TimeoutDuration())
}
