package compile

import (
	"errors"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/source"
)

// attribute turns an engine failure into a classified error carrying the
// file, position and extract the CLI prints.
func attribute(err error, f source.File) error {
	var te *TransformError
	if !errors.As(err, &te) {
		if ce, ok := ferrors.AsClassified(err); ok {
			return ce.WithContext("file", f.Path())
		}
		return ferrors.TransformError("stylesheet engine failed").
			WithCause(err).
			WithContext("file", f.Path()).
			Build()
	}

	filename := te.Filename
	if filename == "" {
		filename = f.Path()
	}
	line, column := te.Line, te.Column
	if line == 0 {
		if l, c, ok := ParseLocation(te.Message); ok {
			line, column = l, c
		}
	}
	b := ferrors.TransformError(te.Message).
		WithCause(te).
		WithContext("file", filename).
		WithContext("source", f.Path()).
		WithContext("extract", NormalizeExtract(te.Extract))
	if te.Kind != "" {
		b = b.WithContext("kind", te.Kind+" Error")
	}
	if line > 0 {
		b = b.WithContext("line", line).WithContext("column", column)
	}
	return b.Build()
}
