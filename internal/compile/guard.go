package compile

import (
	"sync"
	"time"
)

// WaitInterval is how long after a job finishes a new job for the same
// profile should be held back. Editors tend to emit a burst of save events.
const WaitInterval = 250 * time.Millisecond

// Guard tracks running and recently finished jobs per profile. It does not
// block anything itself; callers consult NeedsToWait before starting a job.
type Guard struct {
	mu       sync.Mutex
	now      func() time.Time
	running  map[string]*Job
	finished map[string]time.Time
}

// NewGuard returns an empty Guard.
func NewGuard() *Guard {
	return &Guard{
		now:      time.Now,
		running:  make(map[string]*Job),
		finished: make(map[string]time.Time),
	}
}

// Track registers j so the guard follows its lifecycle.
func (g *Guard) Track(j *Job) {
	j.AddObserver(&guardObserver{guard: g})
}

// NeedsToWait reports whether a job for profileName is running or finished
// within WaitInterval.
func (g *Guard) NeedsToWait(profileName string) bool {
	return g.Remaining(profileName) > 0
}

// Remaining returns how long a caller should wait before starting a job for
// profileName. A running job reports WaitInterval.
func (g *Guard) Remaining(profileName string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.running[profileName]; ok {
		return WaitInterval
	}
	last, ok := g.finished[profileName]
	if !ok {
		return 0
	}
	elapsed := g.now().Sub(last)
	if elapsed > WaitInterval {
		return 0
	}
	if rem := WaitInterval - elapsed; rem > 0 {
		return rem
	}
	// Finishing exactly WaitInterval ago still counts as recent.
	return time.Nanosecond
}

type guardObserver struct {
	guard *Guard
}

func (o *guardObserver) OnEvent(j *Job, e Event) {
	g := o.guard
	name := j.Profile().Name
	g.mu.Lock()
	defer g.mu.Unlock()
	switch e.(type) {
	case Started:
		g.running[name] = j
	case Finished:
		if g.running[name] == j {
			delete(g.running, name)
		}
		g.finished[name] = g.now()
	}
}
