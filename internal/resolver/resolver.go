// Package resolver answers "which sources must be recompiled when this one
// changes" by scanning the import graph of a profile's source tree.
//
// Edges are never cached across queries. Each Pass owns an index of the
// import lists it has read; a new Pass starts from disk again.
package resolver

import (
	"io/fs"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/profile"
	"git.home.luguber.info/inful/lesswatch/internal/source"
	"git.home.luguber.info/inful/lesswatch/internal/util/sets"
)

// Pass is a single resolution pass over one profile's source tree.
// It is not safe for concurrent use.
type Pass struct {
	profile *profile.Profile
	files   []source.File
	scanned bool
	imports map[string][]source.File
}

// NewPass starts a resolution pass for p.
func NewPass(p *profile.Profile) *Pass {
	return &Pass{profile: p, imports: make(map[string][]source.File)}
}

// Sources returns every source file under the profile's source root in lexical
// walk order.
func (r *Pass) Sources() ([]source.File, error) {
	if r.scanned {
		return r.files, nil
	}
	root := r.profile.SourceRoot
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Unreadable subtrees are skipped; the rest of the tree still resolves.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !source.IsSourceFile(d.Name()) {
			return nil
		}
		r.files = append(r.files, source.New(path))
		return nil
	})
	if err != nil {
		return nil, ferrors.FileSystemError("cannot scan source root").
			WithCause(err).
			WithContext("path", root).
			WithContext("profile", r.profile.Name).
			Build()
	}
	r.scanned = true
	return r.files, nil
}

// importsOf returns f's import list, reading f at most once per pass.
func (r *Pass) importsOf(f source.File) ([]source.File, error) {
	if imps, ok := r.imports[f.Path()]; ok {
		return imps, nil
	}
	imps, err := f.Imports()
	if err != nil {
		return nil, err
	}
	r.imports[f.Path()] = imps
	return imps, nil
}

// FirstLevelDependents returns the sources that import f directly, excluding
// f itself.
func (r *Pass) FirstLevelDependents(f source.File) ([]source.File, error) {
	all, err := r.Sources()
	if err != nil {
		return nil, err
	}
	var out []source.File
	for _, candidate := range all {
		if candidate.Equal(f) {
			continue
		}
		imps, err := r.importsOf(candidate)
		if err != nil {
			return nil, err
		}
		for _, imp := range imps {
			if imp.Equal(f) {
				out = append(out, candidate)
				break
			}
		}
	}
	return out, nil
}

// Closure returns every file that transitively imports f, in breadth-first
// order: direct importers first, then their importers. f itself is never part
// of the result.
func (r *Pass) Closure(f source.File) ([]source.File, error) {
	acc := sets.NewOrdered[source.File]()
	visited := sets.New(f)
	queue := []source.File{f}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		deps, err := r.FirstLevelDependents(next)
		if err != nil {
			return nil, err
		}
		for _, d := range deps {
			if visited.Has(d) {
				continue
			}
			visited.Add(d)
			acc.Add(d)
			queue = append(queue, d)
		}
	}
	return acc.Values(), nil
}

// DependentsRecursive returns the transitive dependents of f that the profile
// would compile. Filtering is applied to the result only, so a file reached
// through an excluded partial stays eligible. Inactive profiles yield nothing.
func (r *Pass) DependentsRecursive(f source.File) ([]source.File, error) {
	if !r.profile.Active() {
		return nil, nil
	}
	closure, err := r.Closure(f)
	if err != nil {
		return nil, err
	}
	out := make([]source.File, 0, len(closure))
	for _, d := range closure {
		if r.profile.ShouldCompile(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

// FirstLevelDependents runs a fresh pass and returns the direct importers of f.
func FirstLevelDependents(f source.File, p *profile.Profile) ([]source.File, error) {
	return NewPass(p).FirstLevelDependents(f)
}

// DependentsRecursive runs a fresh pass and returns the compilable transitive
// dependents of f.
func DependentsRecursive(f source.File, p *profile.Profile) ([]source.File, error) {
	return NewPass(p).DependentsRecursive(f)
}

// Compilable returns every source under the profile's root that passes the
// include/exclude test, in lexical order.
func Compilable(p *profile.Profile) ([]source.File, error) {
	if !p.Active() {
		return nil, nil
	}
	all, err := NewPass(p).Sources()
	if err != nil {
		return nil, err
	}
	var out []source.File
	for _, f := range all {
		if p.ShouldCompile(f) {
			out = append(out, f)
		}
	}
	return out, nil
}
