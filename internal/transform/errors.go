package transform

import "errors"

var (
	// ErrEngineNotFound is returned when the compiler binary is not on PATH.
	ErrEngineNotFound = errors.New("stylesheet compiler not found")
	// ErrEngineTimeout is returned when a single compile exceeds its deadline.
	ErrEngineTimeout = errors.New("stylesheet compiler timed out")
)
