package compile

import "git.home.luguber.info/inful/lesswatch/internal/source"

// Event is one of Started, Changed, Unchanged or Finished.
type Event interface {
	eventName() string
}

// Started carries the ordered file set the job will process.
type Started struct {
	Files []source.File
}

// Changed reports a file whose output was written to at least one root.
type Changed struct {
	File source.File
}

// Unchanged reports a file that was skipped or produced identical output.
type Unchanged struct {
	File source.File
}

// Finished carries the number of Changed events of the job.
type Finished struct {
	Count int
}

func (Started) eventName() string   { return "started" }
func (Changed) eventName() string   { return "changed" }
func (Unchanged) eventName() string { return "unchanged" }
func (Finished) eventName() string  { return "finished" }

// EventName returns a stable lowercase name for e, used in logs and payloads.
func EventName(e Event) string { return e.eventName() }

// Observer receives job events. OnEvent runs on the job's goroutine and
// must not call back into the job's Compile. Every run delivers exactly one
// Started and one Finished; a job that fails while resolving dependents
// reports only its trigger in Started.
//
// Observers are compared with == when removed, so implementations should be
// pointer types.
type Observer interface {
	OnEvent(job *Job, e Event)
}
