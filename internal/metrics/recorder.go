package metrics

import "time"

// ResultLabel classifies a single file within a job.
type ResultLabel string

const (
	ResultChanged   ResultLabel = "changed"
	ResultUnchanged ResultLabel = "unchanged"
)

// OutcomeLabel classifies a finished job.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeFailed  OutcomeLabel = "failed"
)

// Recorder defines observability hooks for compile jobs and the daemon.
type Recorder interface {
	ObserveJobDuration(profile string, d time.Duration)
	IncJobOutcome(profile string, outcome OutcomeLabel)
	IncFileResult(profile string, result ResultLabel)
	IncWatchEvent(op string)
	IncRelocation(kind string, applied bool)
	SetPendingEvents(profile string, n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveJobDuration(string, time.Duration) {}
func (NoopRecorder) IncJobOutcome(string, OutcomeLabel)       {}
func (NoopRecorder) IncFileResult(string, ResultLabel)        {}
func (NoopRecorder) IncWatchEvent(string)                     {}
func (NoopRecorder) IncRelocation(string, bool)               {}
func (NoopRecorder) SetPendingEvents(string, int)             {}
