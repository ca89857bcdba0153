package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
)

// Event type names.
const (
	TypeJobStarted      = "JobStarted"
	TypeFileCompiled    = "FileCompiled"
	TypeJobFinished     = "JobFinished"
	TypeOutputRelocated = "OutputRelocated"
)

// JobStarted is recorded when a compile job begins.
type JobStarted struct {
	Profile string   `json:"profile"`
	Trigger string   `json:"trigger"`
	Files   []string `json:"files"`
}

// FileCompiled is recorded for every file a job processed.
type FileCompiled struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
}

// JobFinished is recorded when a job ends, successfully or not.
type JobFinished struct {
	Profile    string `json:"profile"`
	Changed    int    `json:"changed"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// OutputRelocated is recorded for every applied relocation.
type OutputRelocated struct {
	Kind    string `json:"kind"`
	Root    string `json:"root"`
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path,omitempty"`
}

// NewEvent marshals payload into an Event of the given type for jobID.
func NewEvent(jobID, eventType string, payload any) (*BaseEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.EventStoreError("failed to marshal "+eventType+" payload").
			WithCause(err).
			WithContext("job_id", jobID).
			Build()
	}
	return &BaseEvent{
		EventJobID:     jobID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   data,
	}, nil
}

// Decode unmarshals an event payload into v.
func Decode(e Event, v any) error {
	if err := json.Unmarshal(e.Payload(), v); err != nil {
		return errors.EventStoreError("failed to unmarshal event payload").
			WithCause(err).
			WithContext("job_id", e.JobID()).
			WithContext("event_type", e.Type()).
			Build()
	}
	return nil
}
