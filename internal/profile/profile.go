// Package profile describes compilation units: one source root mirrored into
// an ordered list of output roots, narrowed by include/exclude patterns.
package profile

import (
	"path/filepath"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/source"
)

// Profile is read-only once handed to a compile job.
type Profile struct {
	Name        string
	SourceRoot  string
	OutputRoots []string
	Include     string
	Exclude     string
	Compress    bool

	include []Pattern
	exclude []Pattern
}

// New builds a Profile with canonical roots and pre-normalized patterns.
func New(name, sourceRoot string, outputRoots []string, include, exclude string, compress bool) *Profile {
	roots := make([]string, 0, len(outputRoots))
	for _, r := range outputRoots {
		if r == "" {
			continue
		}
		roots = append(roots, source.Canonical(r))
	}
	return &Profile{
		Name:        name,
		SourceRoot:  source.Canonical(sourceRoot),
		OutputRoots: roots,
		Include:     include,
		Exclude:     exclude,
		Compress:    compress,
		include:     compilePatterns(include),
		exclude:     compilePatterns(exclude),
	}
}

// Active reports whether the profile has somewhere to write output.
func (p *Profile) Active() bool {
	return p != nil && len(p.OutputRoots) > 0
}

// Contains reports whether f lives under the source root.
func (p *Profile) Contains(f source.File) bool {
	return p != nil && source.IsAncestor(p.SourceRoot, f.Path())
}

// ShouldCompile reports whether f passes the include/exclude test. Inactive
// profiles compile nothing. An empty include list includes everything.
func (p *Profile) ShouldCompile(f source.File) bool {
	if !p.Active() {
		return false
	}
	include := len(p.include) == 0
	for _, pattern := range p.include {
		if pattern.Match(f.Path()) {
			include = true
			break
		}
	}
	if !include {
		return false
	}
	for _, pattern := range p.exclude {
		if pattern.Match(f.Path()) {
			return false
		}
	}
	return true
}

// Rel returns f's path relative to the source root.
func (p *Profile) Rel(f source.File) (string, error) {
	rel, err := filepath.Rel(p.SourceRoot, f.Path())
	if err != nil {
		return "", ferrors.ValidationError("source file is not under profile root").
			WithCause(err).
			WithContext("file", f.Path()).
			WithContext("profile", p.Name).
			Build()
	}
	return rel, nil
}

// Lookup returns the first profile whose source root contains f, or nil.
func Lookup(profiles []*Profile, f source.File) *Profile {
	for _, p := range profiles {
		if p.Contains(f) {
			return p
		}
	}
	return nil
}
