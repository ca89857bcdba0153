package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
	"git.home.luguber.info/inful/lesswatch/internal/confirm"
	"git.home.luguber.info/inful/lesswatch/internal/logfields"
	"git.home.luguber.info/inful/lesswatch/internal/metrics"
	"git.home.luguber.info/inful/lesswatch/internal/mirror"
	"git.home.luguber.info/inful/lesswatch/internal/profile"
	"git.home.luguber.info/inful/lesswatch/internal/source"
	"git.home.luguber.info/inful/lesswatch/internal/watch"
)

const requestBuffer = 64

// RelocationRecorder persists applied relocations.
type RelocationRecorder interface {
	RecordRelocations(batchID string, relocations []mirror.Relocation)
}

// DispatcherOptions configures NewDispatcher.
type DispatcherOptions struct {
	Profiles  []*profile.Profile
	Engine    compile.Engine
	Observers []compile.Observer
	// Gate decides relocations. Nil applies every relocation without asking.
	Gate     *confirm.Gate
	Recorder metrics.Recorder
	History  RelocationRecorder
	// Debounce is the quiet period after the last change before compiling.
	Debounce time.Duration
}

// Dispatcher routes watch events to one serial worker per active profile.
type Dispatcher struct {
	opts    DispatcherOptions
	guard   *compile.Guard
	workers map[string]*worker
	group   WorkerGroup

	mu   sync.Mutex
	done chan struct{}
}

// NewDispatcher returns a dispatcher; call Start before Dispatch.
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	if opts.Gate == nil {
		opts.Gate = confirm.NewGate(confirm.State{
			Move:   confirm.Policy{Do: true},
			Copy:   confirm.Policy{Do: true},
			Delete: confirm.Policy{Do: true},
		}, nil, 0)
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	d := &Dispatcher{
		opts:    opts,
		guard:   compile.NewGuard(),
		workers: make(map[string]*worker),
		done:    make(chan struct{}),
	}
	for _, p := range opts.Profiles {
		if !p.Active() {
			continue
		}
		d.workers[p.Name] = &worker{
			d:        d,
			profile:  p,
			requests: make(chan request, requestBuffer),
		}
	}
	return d
}

// Start launches the workers. They run until ctx is done or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	for _, w := range d.workers {
		d.group.Go("profile:"+w.profile.Name, func() { w.run(ctx) })
	}
}

// Stop ends the workers and waits for a job in progress to finish.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	select {
	case <-d.done:
	default:
		close(d.done)
	}
	d.mu.Unlock()
	return d.group.StopAndWait(ctx)
}

// Dispatch hands ev to the worker of the profile owning its path. It reports
// false for events that are not acted on.
func (d *Dispatcher) Dispatch(ev watch.Event) bool {
	d.opts.Recorder.IncWatchEvent(ev.Op.String())
	if !source.IsSourceFile(ev.Path) {
		return false
	}
	p := profile.Lookup(d.opts.Profiles, source.New(ev.Path))
	if p == nil {
		return false
	}
	w, ok := d.workers[p.Name]
	if !ok {
		return false
	}
	return w.send(request{event: ev})
}

// Sweep asks every worker for a full build of its profile.
func (d *Dispatcher) Sweep() {
	for _, w := range d.workers {
		w.send(request{sweep: true})
	}
}

// Guard exposes the job guard shared by the workers.
func (d *Dispatcher) Guard() *compile.Guard { return d.guard }

func (d *Dispatcher) jobOptions() []compile.Option {
	return []compile.Option{
		compile.WithObservers(d.opts.Observers...),
		compile.WithGuard(d.guard),
	}
}

type request struct {
	event watch.Event
	sweep bool
}

type worker struct {
	d        *Dispatcher
	profile  *profile.Profile
	requests chan request

	pending []source.File
}

func (w *worker) send(r request) bool {
	select {
	case w.requests <- r:
		return true
	case <-w.d.done:
		return false
	}
}

func (w *worker) run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	var timerC <-chan time.Time

	schedule := func(after time.Duration) {
		if len(w.pending) == 0 {
			timerC = nil
			return
		}
		if after <= 0 {
			after = time.Millisecond
		}
		timer.Reset(after)
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.d.done:
			return
		case r := <-w.requests:
			w.handle(ctx, r)
			schedule(max(w.d.opts.Debounce, w.d.guard.Remaining(w.profile.Name)))
		case <-timerC:
			timerC = nil
			w.flush(ctx)
			schedule(w.d.guard.Remaining(w.profile.Name))
		}
		w.d.opts.Recorder.SetPendingEvents(w.profile.Name, len(w.pending))
	}
}

func (w *worker) handle(ctx context.Context, r request) {
	if r.sweep {
		w.sweep(ctx)
		return
	}

	ev := r.event
	f := source.New(ev.Path)
	slog.Debug("Handling watch event",
		logfields.Profile(w.profile.Name),
		logfields.Event(ev.Op.String()),
		logfields.Path(f.Path()))

	switch ev.Op {
	case watch.Created, watch.Modified:
		w.enqueue(f)
	case watch.Deleted:
		w.drop(f)
		relocs, err := mirror.PlanDelete(w.profile, f.Path())
		w.relocate(ctx, mirror.KindDelete, f, relocs, err)
	case watch.Moved:
		w.drop(source.Join(ev.OldParent, f.Name()))
		relocs, err := mirror.PlanMove(w.profile, f.Path(), ev.OldParent)
		if !w.relocate(ctx, mirror.KindMove, f, relocs, err) {
			w.enqueue(f)
		}
	case watch.Copied:
		relocs, err := mirror.PlanCopy(w.profile, f.Path(), ev.OldParent)
		if !w.relocate(ctx, mirror.KindCopy, f, relocs, err) {
			w.enqueue(f)
		}
	}
}

func (w *worker) enqueue(f source.File) {
	for _, p := range w.pending {
		if p.Equal(f) {
			return
		}
	}
	w.pending = append(w.pending, f)
}

func (w *worker) drop(files ...source.File) {
	kept := w.pending[:0]
	for _, p := range w.pending {
		remove := false
		for _, f := range files {
			if p.Equal(f) {
				remove = true
				break
			}
		}
		if !remove {
			kept = append(kept, p)
		}
	}
	w.pending = kept
}

// flush compiles pending files until the guard asks to wait. Files compiled
// as dependents of an earlier trigger leave the queue with it.
func (w *worker) flush(ctx context.Context) {
	for len(w.pending) > 0 {
		if ctx.Err() != nil || w.d.guard.NeedsToWait(w.profile.Name) {
			return
		}
		f := w.pending[0]
		w.pending = w.pending[1:]
		if !f.Exists() {
			continue
		}
		job := compile.NewJob(f, w.profile, w.d.opts.Engine, w.d.jobOptions()...)
		if err := job.Compile(ctx); err != nil {
			slog.Error("Compile failed",
				logfields.JobID(job.ID),
				logfields.Profile(w.profile.Name),
				logfields.Source(f.Path()),
				logfields.Error(err))
			continue
		}
		w.drop(job.Files()...)
	}
}

func (w *worker) sweep(ctx context.Context) {
	w.pending = nil
	slog.Info("Sweeping profile", logfields.Profile(w.profile.Name))
	res, err := compile.Build(ctx, w.profile, w.d.opts.Engine, w.d.jobOptions()...)
	if err != nil {
		slog.Error("Sweep finished with errors",
			logfields.Profile(w.profile.Name),
			logfields.Error(err))
	}
	slog.Info("Sweep complete",
		logfields.Profile(w.profile.Name),
		slog.Int("jobs", res.Jobs),
		logfields.Changed(len(res.Changed)))
}

// relocate asks the gate about relocs and applies them. It reports whether
// there was anything to relocate.
func (w *worker) relocate(ctx context.Context, kind mirror.Kind, f source.File, relocs []mirror.Relocation, planErr error) bool {
	if planErr != nil {
		slog.Error("Cannot plan output relocation",
			logfields.Profile(w.profile.Name),
			logfields.Event(string(kind)),
			logfields.Source(f.Path()),
			logfields.Error(planErr))
		return true
	}
	if len(relocs) == 0 {
		return false
	}

	rec := w.d.opts.Recorder
	ok, err := w.d.opts.Gate.Confirm(ctx, kind, f.Name())
	if err != nil {
		slog.Warn("Relocation prompt failed",
			logfields.Event(string(kind)),
			logfields.Source(f.Path()),
			logfields.Error(err))
		rec.IncRelocation(string(kind), false)
		return true
	}
	if !ok {
		slog.Info("Relocation declined",
			logfields.Event(string(kind)),
			logfields.Source(f.Path()))
		rec.IncRelocation(string(kind), false)
		return true
	}

	if err := mirror.Apply(relocs); err != nil {
		slog.Error("Relocation failed",
			logfields.Event(string(kind)),
			logfields.Source(f.Path()),
			logfields.Error(err))
		rec.IncRelocation(string(kind), false)
		return true
	}
	rec.IncRelocation(string(kind), true)
	for _, r := range relocs {
		slog.Info("Relocated output",
			logfields.Event(string(kind)),
			logfields.OutputRoot(r.Root),
			logfields.Path(r.String()))
	}
	if w.d.opts.History != nil {
		w.d.opts.History.RecordRelocations(uuid.NewString(), relocs)
	}
	return true
}
