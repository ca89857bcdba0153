// Package errors provides the classified error primitives used across lesswatch.
//
// Every failure that crosses a package boundary is a ClassifiedError carrying a
// category (config, usage, transform, filesystem, ...), a severity, a retry hint
// and a free-form context map. The context keys "file", "line" and "column" are
// reserved for errors attributed to a stylesheet so the CLI and observers can
// point at the offending location.
//
// Example usage:
//
//	err := errors.FileSystemError("write mirrored output").
//		WithCause(ioErr).
//		WithContext("file", path).
//		Build()
package errors
