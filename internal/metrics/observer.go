package metrics

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
)

// Observer feeds compile job events into a Recorder.
type Observer struct {
	recorder Recorder
	now      func() time.Time

	mu     sync.Mutex
	starts map[string]time.Time
}

// NewObserver returns an Observer writing to r (NoopRecorder when nil).
func NewObserver(r Recorder) *Observer {
	if r == nil {
		r = NoopRecorder{}
	}
	return &Observer{recorder: r, now: time.Now, starts: make(map[string]time.Time)}
}

func (o *Observer) OnEvent(j *compile.Job, e compile.Event) {
	name := j.Profile().Name
	switch e.(type) {
	case compile.Started:
		o.mu.Lock()
		o.starts[j.ID] = o.now()
		o.mu.Unlock()
	case compile.Changed:
		o.recorder.IncFileResult(name, ResultChanged)
	case compile.Unchanged:
		o.recorder.IncFileResult(name, ResultUnchanged)
	case compile.Finished:
		o.mu.Lock()
		start, ok := o.starts[j.ID]
		delete(o.starts, j.ID)
		o.mu.Unlock()
		if ok {
			o.recorder.ObserveJobDuration(name, o.now().Sub(start))
		}
		outcome := OutcomeSuccess
		if j.Err() != nil {
			outcome = OutcomeFailed
		}
		o.recorder.IncJobOutcome(name, outcome)
	}
}
