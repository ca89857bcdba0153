// Package eventstore persists compile job history in SQLite and rebuilds
// read models from it.
package eventstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

const (
	jobStatusRunning   = "running"
	jobStatusSucceeded = "succeeded"
	jobStatusFailed    = "failed"
)

// JobSummary is a read model of one compile job.
type JobSummary struct {
	JobID        string        `json:"job_id"`
	Profile      string        `json:"profile"`
	Trigger      string        `json:"trigger"`
	Status       string        `json:"status"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	FileCount    int           `json:"file_count"`
	ChangedFiles []string      `json:"changed_files,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// JobHistoryProjection maintains an in-memory view of job history,
// reconstructed from events stored in the event store.
type JobHistoryProjection struct {
	mu       sync.RWMutex
	store    Store
	jobs     map[string]*JobSummary
	history  []*JobSummary // newest first
	maxSize  int
	lastSync time.Time
}

// NewJobHistoryProjection creates a new projection backed by the given store.
func NewJobHistoryProjection(store Store, maxHistorySize int) *JobHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &JobHistoryProjection{
		store:   store,
		jobs:    make(map[string]*JobSummary),
		history: make([]*JobSummary, 0, maxHistorySize),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from the events recorded since since.
func (p *JobHistoryProjection) Rebuild(ctx context.Context, since time.Time) error {
	events, err := p.store.GetRange(ctx, since, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.jobs = make(map[string]*JobSummary)
	p.history = make([]*JobSummary, 0, p.maxSize)
	for _, event := range events {
		p.applyEventLocked(event)
	}
	sort.SliceStable(p.history, func(i, j int) bool {
		return p.history[i].StartedAt.After(p.history[j].StartedAt)
	})
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneJobsLocked()

	p.lastSync = time.Now()
	return nil
}

// Apply processes a single event and updates the projection.
func (p *JobHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

func (p *JobHistoryProjection) applyEventLocked(event Event) {
	switch event.Type() {
	case TypeJobStarted, TypeFileCompiled, TypeJobFinished:
	default:
		return
	}

	jobID := event.JobID()
	if jobID == "" {
		return
	}
	summary, exists := p.jobs[jobID]
	if !exists {
		summary = &JobSummary{JobID: jobID, Status: jobStatusRunning, StartedAt: event.Timestamp()}
		p.jobs[jobID] = summary
	}

	switch event.Type() {
	case TypeJobStarted:
		var payload JobStarted
		if Decode(event, &payload) == nil {
			summary.Profile = payload.Profile
			summary.Trigger = payload.Trigger
			summary.FileCount = len(payload.Files)
		}
		summary.StartedAt = event.Timestamp()

	case TypeFileCompiled:
		var payload FileCompiled
		if Decode(event, &payload) == nil && payload.Changed {
			summary.ChangedFiles = append(summary.ChangedFiles, payload.Path)
		}

	case TypeJobFinished:
		finished := event.Timestamp()
		summary.FinishedAt = &finished
		summary.Duration = finished.Sub(summary.StartedAt)
		summary.Status = jobStatusSucceeded
		var payload JobFinished
		if Decode(event, &payload) == nil {
			if payload.Profile != "" {
				summary.Profile = payload.Profile
			}
			if payload.Error != "" {
				summary.Status = jobStatusFailed
				summary.Error = payload.Error
			}
		}
		p.addToHistoryLocked(summary)
	}
}

func (p *JobHistoryProjection) addToHistoryLocked(summary *JobSummary) {
	for _, h := range p.history {
		if h.JobID == summary.JobID {
			return
		}
	}
	p.history = append([]*JobSummary{summary}, p.history...)
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneJobsLocked()
}

// pruneJobsLocked drops finished jobs that fell out of the bounded history.
// Caller must hold p.mu (write lock).
func (p *JobHistoryProjection) pruneJobsLocked() {
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		keep[h.JobID] = struct{}{}
	}
	for id, summary := range p.jobs {
		if summary.Status == jobStatusRunning {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(p.jobs, id)
		}
	}
}

// History returns finished jobs, newest first.
func (p *JobHistoryProjection) History() []*JobSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make([]*JobSummary, len(p.history))
	copy(result, p.history)
	return result
}

// Job returns a copy of the summary for jobID.
func (p *JobHistoryProjection) Job(jobID string) (*JobSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	summary, ok := p.jobs[jobID]
	if !ok {
		return nil, false
	}
	cp := *summary
	return &cp, true
}

// LastSyncTime returns when the projection was last synchronized.
func (p *JobHistoryProjection) LastSyncTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}
