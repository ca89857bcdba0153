// Package notify broadcasts compile job events to NATS so editors, browsers
// (through a bridge) or CI hooks can react to fresh output.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/logfields"
	"git.home.luguber.info/inful/lesswatch/internal/retry"
)

// DefaultSubject is the subject prefix events are published under.
const DefaultSubject = "lesswatch.jobs"

const publishTimeout = 5 * time.Second

// Message is the JSON payload published for every job event.
type Message struct {
	JobID     string    `json:"job_id"`
	Profile   string    `json:"profile"`
	Event     string    `json:"event"`
	Trigger   string    `json:"trigger"`
	File      string    `json:"file,omitempty"`
	Files     []string  `json:"files,omitempty"`
	Count     int       `json:"count"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type publishFunc func(ctx context.Context, subject string, data []byte) error

// NATSPublisher is a compile.Observer publishing every event as a Message on
// "<subject>.<profile>.<event>".
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	publish publishFunc
	retry   retry.Policy
	now     func() time.Time
}

// Options configures NewNATSPublisher.
type Options struct {
	URL     string
	Subject string
	// JetStream publishes with acknowledgement into an existing stream.
	JetStream bool
	// Retry governs republishing after a failed publish. The zero value
	// uses retry.DefaultPolicy.
	Retry retry.Policy
}

// NewNATSPublisher connects to the server at opts.URL.
func NewNATSPublisher(opts Options) (*NATSPublisher, error) {
	url := opts.URL
	if url == "" {
		url = nats.DefaultURL
	}
	conn, err := nats.Connect(url, nats.Name("lesswatch"))
	if err != nil {
		return nil, ferrors.BrokerError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", url).
			Build()
	}

	p := newPublisher(opts.Subject, func(_ context.Context, subject string, data []byte) error {
		return conn.Publish(subject, data)
	})
	p.conn = conn
	if opts.Retry != (retry.Policy{}) {
		if err := opts.Retry.Validate(); err != nil {
			conn.Close()
			return nil, err
		}
		p.retry = opts.Retry
	}

	if opts.JetStream {
		js, err := jetstream.New(conn)
		if err != nil {
			conn.Close()
			return nil, ferrors.BrokerError("failed to create JetStream context").WithCause(err).Build()
		}
		p.publish = func(ctx context.Context, subject string, data []byte) error {
			_, err := js.Publish(ctx, subject, data)
			return err
		}
	}

	slog.Info("NATS publisher initialized", "url", url, "subject", p.subject, "jetstream", opts.JetStream)
	return p, nil
}

func newPublisher(subject string, publish publishFunc) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{subject: subject, publish: publish, retry: retry.DefaultPolicy(), now: time.Now}
}

// Subject returns the subject used for an event of profileName.
func (p *NATSPublisher) Subject(profileName, event string) string {
	return p.subject + "." + subjectToken(profileName) + "." + event
}

func (p *NATSPublisher) OnEvent(j *compile.Job, e compile.Event) {
	msg := p.message(j, e)
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Warn("Failed to encode job event", logfields.JobID(j.ID), logfields.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	subject := p.Subject(msg.Profile, msg.Event)
	err = retry.Do(ctx, p.retry, func(ctx context.Context) error {
		return p.publish(ctx, subject, data)
	})
	if err != nil {
		slog.Warn("Failed to publish job event",
			logfields.JobID(j.ID),
			logfields.Event(msg.Event),
			logfields.Error(err))
		return
	}
	slog.Debug("Published job event", logfields.JobID(j.ID), logfields.Event(msg.Event))
}

func (p *NATSPublisher) message(j *compile.Job, e compile.Event) Message {
	msg := Message{
		JobID:     j.ID,
		Profile:   j.Profile().Name,
		Event:     compile.EventName(e),
		Trigger:   j.Trigger().Path(),
		Timestamp: p.now(),
	}
	switch ev := e.(type) {
	case compile.Started:
		for _, f := range ev.Files {
			msg.Files = append(msg.Files, f.Path())
		}
		msg.Count = len(ev.Files)
	case compile.Changed:
		msg.File = ev.File.Path()
	case compile.Unchanged:
		msg.File = ev.File.Path()
	case compile.Finished:
		msg.Count = ev.Count
		if err := j.Err(); err != nil {
			msg.Error = err.Error()
		}
	}
	return msg
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

// subjectToken makes a profile name safe for use as one subject token.
func subjectToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, s)
}
