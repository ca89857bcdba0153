package config

import (
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
)

// enum maps case-insensitive spellings onto a closed set of values.
type enum[T ~string] struct {
	name   string
	values map[string]T
	def    T
}

func newEnum[T ~string](name string, def T, values ...T) enum[T] {
	m := make(map[string]T, len(values))
	for _, v := range values {
		m[strings.ToLower(string(v))] = v
	}
	return enum[T]{name: name, values: m, def: def}
}

func (e enum[T]) normalize(raw T) T {
	key := strings.ToLower(strings.TrimSpace(string(raw)))
	if key == "" {
		return e.def
	}
	if v, ok := e.values[key]; ok {
		return v
	}
	return T(key)
}

func (e enum[T]) validate(v T) error {
	if _, ok := e.values[string(v)]; ok {
		return nil
	}
	return ferrors.ValidationError("invalid "+e.name).
		WithContext("value", string(v)).
		WithContext("valid", strings.Join(e.keys(), ", ")).
		Build()
}

func (e enum[T]) keys() []string {
	out := make([]string, 0, len(e.values))
	for k := range e.values {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = newEnum("log level", LogLevelInfo, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)

// NormalizeLogLevel maps raw onto a LogLevel, defaulting to info for
// anything unrecognized.
func NormalizeLogLevel(raw string) LogLevel {
	v := logLevels.normalize(LogLevel(raw))
	if logLevels.validate(v) != nil {
		return LogLevelInfo
	}
	return v
}

// EngineKind selects the transform engine implementation.
type EngineKind string

const (
	// EngineExec runs an external compiler such as lessc.
	EngineExec EngineKind = "exec"
	// EngineCopy passes sources through unchanged.
	EngineCopy EngineKind = "copy"
)

var engineKinds = newEnum("engine kind", EngineExec, EngineExec, EngineCopy)
