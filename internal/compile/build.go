package compile

import (
	"context"
	"errors"

	"git.home.luguber.info/inful/lesswatch/internal/profile"
	"git.home.luguber.info/inful/lesswatch/internal/resolver"
	"git.home.luguber.info/inful/lesswatch/internal/source"
	"git.home.luguber.info/inful/lesswatch/internal/util/sets"
)

// BuildResult summarizes a full build of one profile.
type BuildResult struct {
	Jobs    int
	Changed []source.File
}

// Build compiles every compilable file of p, one job per file. Files already
// compiled as a dependent earlier in the same build get no job of their own.
// A failing job does not stop the build; failures are joined in the error.
func Build(ctx context.Context, p *profile.Profile, engine Engine, opts ...Option) (*BuildResult, error) {
	res := &BuildResult{}
	files, err := resolver.Compilable(p)
	if err != nil {
		return res, err
	}

	done := sets.New[source.File]()
	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if done.Has(f) {
			continue
		}
		job := NewJob(f, p, engine, opts...)
		res.Jobs++
		if err := job.Compile(ctx); err != nil {
			errs = append(errs, err)
			done.Add(f)
		} else {
			for _, c := range job.Files() {
				done.Add(c)
			}
		}
		res.Changed = append(res.Changed, job.ChangedFiles()...)
	}
	return res, errors.Join(errs...)
}
