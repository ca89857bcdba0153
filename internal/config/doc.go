// Package config loads the lesswatch YAML configuration: profiles, the
// transform engine, relocation confirmation policy, daemon and NATS settings.
package config
