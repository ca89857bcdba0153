package eventstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
	"git.home.luguber.info/inful/lesswatch/internal/logfields"
	"git.home.luguber.info/inful/lesswatch/internal/mirror"
)

const appendTimeout = 5 * time.Second

// HistoryObserver records compile job events in a Store. Store failures are
// logged and never fail the job.
type HistoryObserver struct {
	store Store
	now   func() time.Time

	mu     sync.Mutex
	starts map[string]time.Time
}

// NewHistoryObserver returns an observer writing to store.
func NewHistoryObserver(store Store) *HistoryObserver {
	return &HistoryObserver{store: store, now: time.Now, starts: make(map[string]time.Time)}
}

func (h *HistoryObserver) OnEvent(j *compile.Job, e compile.Event) {
	switch ev := e.(type) {
	case compile.Started:
		h.mu.Lock()
		h.starts[j.ID] = h.now()
		h.mu.Unlock()
		files := make([]string, 0, len(ev.Files))
		for _, f := range ev.Files {
			files = append(files, f.Path())
		}
		h.append(j.ID, TypeJobStarted, JobStarted{Profile: j.Profile().Name, Trigger: j.Trigger().Path(), Files: files})
	case compile.Changed:
		h.append(j.ID, TypeFileCompiled, FileCompiled{Path: ev.File.Path(), Changed: true})
	case compile.Unchanged:
		h.append(j.ID, TypeFileCompiled, FileCompiled{Path: ev.File.Path()})
	case compile.Finished:
		h.mu.Lock()
		start, ok := h.starts[j.ID]
		delete(h.starts, j.ID)
		h.mu.Unlock()
		fin := JobFinished{Profile: j.Profile().Name, Changed: ev.Count}
		if ok {
			fin.DurationMS = h.now().Sub(start).Milliseconds()
		}
		if err := j.Err(); err != nil {
			fin.Error = err.Error()
		}
		h.append(j.ID, TypeJobFinished, fin)
	}
}

// RecordRelocations stores applied relocations under batchID.
func (h *HistoryObserver) RecordRelocations(batchID string, relocations []mirror.Relocation) {
	for _, r := range relocations {
		h.append(batchID, TypeOutputRelocated, OutputRelocated{
			Kind:    string(r.Kind),
			Root:    r.Root,
			OldPath: r.OldPath,
			NewPath: r.NewPath,
		})
	}
}

func (h *HistoryObserver) append(jobID, eventType string, payload any) {
	ev, err := NewEvent(jobID, eventType, payload)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		err = h.store.Append(ctx, ev.JobID(), ev.Type(), ev.Payload(), nil)
		cancel()
	}
	if err != nil {
		slog.Warn("Failed to record job history",
			logfields.JobID(jobID),
			logfields.Event(eventType),
			logfields.Error(err))
	}
}
