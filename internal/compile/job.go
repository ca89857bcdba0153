package compile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/logfields"
	"git.home.luguber.info/inful/lesswatch/internal/mirror"
	"git.home.luguber.info/inful/lesswatch/internal/profile"
	"git.home.luguber.info/inful/lesswatch/internal/resolver"
	"git.home.luguber.info/inful/lesswatch/internal/source"
	"git.home.luguber.info/inful/lesswatch/internal/util/sets"
)

// State is the lifecycle position of a Job.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ErrAlreadyCompiled is returned when Compile is called on a job that is not idle.
var ErrAlreadyCompiled = ferrors.UsageError("compile job can only be run once").Build()

// Job compiles one trigger file and its dependents for one profile.
type Job struct {
	ID string

	trigger source.File
	profile *profile.Profile
	engine  Engine
	now     func() time.Time

	mu         sync.Mutex
	state      State
	files      []source.File
	index      int
	changed    *sets.Ordered[source.File]
	finishedAt time.Time
	err        error
	observers  []Observer
}

// Option configures a Job.
type Option func(*Job)

// WithObservers registers observers before the job starts.
func WithObservers(observers ...Observer) Option {
	return func(j *Job) {
		for _, o := range observers {
			j.AddObserver(o)
		}
	}
}

// WithGuard lets g follow the job's lifecycle.
func WithGuard(g *Guard) Option {
	return func(j *Job) { g.Track(j) }
}

// WithClock overrides the time source used for the finish timestamp.
func WithClock(now func() time.Time) Option {
	return func(j *Job) { j.now = now }
}

// NewJob creates an idle job for trigger under p.
func NewJob(trigger source.File, p *profile.Profile, engine Engine, opts ...Option) *Job {
	j := &Job{
		ID:      uuid.NewString(),
		trigger: trigger,
		profile: p,
		engine:  engine,
		now:     time.Now,
		index:   -1,
		changed: sets.NewOrdered[source.File](),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Trigger returns the file that started the job.
func (j *Job) Trigger() source.File { return j.trigger }

// Profile returns the profile the job compiles for.
func (j *Job) Profile() *profile.Profile { return j.profile }

// State returns the current lifecycle state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Files returns the ordered file set, empty until the job has started.
func (j *Job) Files() []source.File {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]source.File, len(j.files))
	copy(out, j.files)
	return out
}

// Current returns the file being processed, or false outside a run.
func (j *Job) Current() (source.File, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.index < 0 || j.index >= len(j.files) {
		return source.File{}, false
	}
	return j.files[j.index], true
}

// ChangedFiles returns the files whose output was written, in order.
func (j *Job) ChangedFiles() []source.File {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.changed.Values()
}

// FinishedAt returns when the job finished, or the zero time.
func (j *Job) FinishedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.finishedAt
}

// Err returns the failure that stopped the job, if any.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// AddObserver registers o. Adding the same observer twice has no effect.
func (j *Job) AddObserver(o Observer) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, existing := range j.observers {
		if existing == o {
			return
		}
	}
	j.observers = append(j.observers, o)
}

// RemoveObserver unregisters o.
func (j *Job) RemoveObserver(o Observer) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i, existing := range j.observers {
		if existing == o {
			j.observers = append(j.observers[:i], j.observers[i+1:]...)
			return
		}
	}
}

// NotifyObservers delivers e to every registered observer in registration order.
func (j *Job) NotifyObservers(e Event) {
	j.mu.Lock()
	observers := make([]Observer, len(j.observers))
	copy(observers, j.observers)
	j.mu.Unlock()
	for _, o := range observers {
		o.OnEvent(j, e)
	}
}

// Compile runs the job. It returns ErrAlreadyCompiled on any call after the
// first. Outputs written before a failure are kept.
func (j *Job) Compile(ctx context.Context) error {
	j.mu.Lock()
	if j.state != StateIdle {
		j.mu.Unlock()
		slog.Error("Compile job invoked twice",
			logfields.JobID(j.ID),
			logfields.Source(j.trigger.Path()))
		return ErrAlreadyCompiled
	}
	j.state = StateRunning
	j.mu.Unlock()

	err := j.run(ctx)
	j.finish(err)
	return err
}

func (j *Job) run(ctx context.Context) error {
	if !j.profile.Active() {
		j.NotifyObservers(Started{})
		return nil
	}

	files := sets.NewOrdered(j.trigger)
	deps, err := resolver.DependentsRecursive(j.trigger, j.profile)
	for _, d := range deps {
		files.Add(d)
	}

	j.mu.Lock()
	j.files = files.Values()
	j.mu.Unlock()

	// Started always precedes Finished, even when resolution failed.
	j.NotifyObservers(Started{Files: j.Files()})
	if err != nil {
		return err
	}

	for i, f := range j.files {
		j.mu.Lock()
		j.index = i
		j.mu.Unlock()

		changed, err := j.compileFile(ctx, f)
		if err != nil {
			return err
		}
		if changed {
			j.mu.Lock()
			j.changed.Add(f)
			j.mu.Unlock()
			j.NotifyObservers(Changed{File: f})
		} else {
			j.NotifyObservers(Unchanged{File: f})
		}
	}
	return nil
}

func (j *Job) compileFile(ctx context.Context, f source.File) (bool, error) {
	if !j.profile.ShouldCompile(f) {
		return false, nil
	}
	text, err := f.Read()
	if err != nil {
		return false, err
	}
	out, err := j.engine.Compile(ctx, text, f.Path(), ShouldCompress(text, j.profile.Compress))
	if err != nil {
		return false, attribute(err, f)
	}
	written, err := mirror.Write(j.profile, f, out)
	if err != nil {
		return false, err
	}
	for _, path := range written {
		slog.Debug("Wrote output",
			logfields.JobID(j.ID),
			logfields.Source(f.Path()),
			logfields.Path(path))
	}
	return len(written) > 0, nil
}

func (j *Job) finish(err error) {
	j.mu.Lock()
	j.state = StateFinished
	j.finishedAt = j.now()
	j.err = err
	count := j.changed.Len()
	j.mu.Unlock()

	j.NotifyObservers(Finished{Count: count})
}
