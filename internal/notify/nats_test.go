package notify

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
	"git.home.luguber.info/inful/lesswatch/internal/profile"
	"git.home.luguber.info/inful/lesswatch/internal/retry"
	"git.home.luguber.info/inful/lesswatch/internal/source"
)

type published struct {
	subject string
	msg     Message
}

type engineFunc func(src string) (string, error)

func (f engineFunc) Compile(_ context.Context, src, _ string, _ bool) (string, error) {
	return f(src)
}

func TestNATSPublisherPublishesEveryEvent(t *testing.T) {
	var got []published
	p := newPublisher("", func(_ context.Context, subject string, data []byte) error {
		var m Message
		require.NoError(t, json.Unmarshal(data, &m))
		got = append(got, published{subject: subject, msg: m})
		return nil
	})
	p.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	src, out := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.less"), []byte("a{}"), 0o600))
	prof := profile.New("my.site", src, []string{out}, "", "", false)
	job := compile.NewJob(source.Join(src, "a.less"), prof,
		engineFunc(func(s string) (string, error) { return s, nil }),
		compile.WithObservers(p))
	require.NoError(t, job.Compile(t.Context()))

	require.Len(t, got, 3)
	assert.Equal(t, "lesswatch.jobs.my_site.started", got[0].subject)
	assert.Equal(t, 1, got[0].msg.Count)
	assert.Equal(t, "lesswatch.jobs.my_site.changed", got[1].subject)
	assert.Equal(t, source.Join(src, "a.less").Path(), got[1].msg.File)
	assert.Equal(t, "lesswatch.jobs.my_site.finished", got[2].subject)
	assert.Equal(t, job.ID, got[2].msg.JobID)
	assert.Equal(t, 1, got[2].msg.Count)
}

func TestNATSPublisherSurvivesPublishErrors(t *testing.T) {
	calls := 0
	p := newPublisher("custom", func(context.Context, string, []byte) error {
		calls++
		return errors.New("no responders")
	})
	p.retry = retry.NewPolicy(retry.Fixed, time.Millisecond, time.Millisecond, 1)

	src, out := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.less"), []byte("a{}"), 0o600))
	prof := profile.New("site", src, []string{out}, "", "", false)
	job := compile.NewJob(source.Join(src, "a.less"), prof,
		engineFunc(func(s string) (string, error) { return s, nil }),
		compile.WithObservers(p))
	require.NoError(t, job.Compile(t.Context()))
	assert.Equal(t, 6, calls, "each of three events is tried twice")
	assert.Equal(t, "custom.site.finished", p.Subject("site", "finished"))
}

func TestNATSPublisherRetriesTransientFailure(t *testing.T) {
	attempts := map[string]int{}
	p := newPublisher("", func(_ context.Context, subject string, _ []byte) error {
		attempts[subject]++
		if attempts[subject] == 1 {
			return errors.New("timeout")
		}
		return nil
	})
	p.retry = retry.NewPolicy(retry.Fixed, time.Millisecond, time.Millisecond, 2)

	src, out := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.less"), []byte("a{}"), 0o600))
	prof := profile.New("site", src, []string{out}, "", "", false)
	job := compile.NewJob(source.Join(src, "a.less"), prof,
		engineFunc(func(s string) (string, error) { return s, nil }),
		compile.WithObservers(p))
	require.NoError(t, job.Compile(t.Context()))

	assert.Equal(t, 2, attempts[DefaultSubject+".site.finished"])
	assert.Equal(t, 2, attempts[DefaultSubject+".site.started"])
}

func TestNewNATSPublisherUnreachable(t *testing.T) {
	_, err := NewNATSPublisher(Options{URL: "nats://127.0.0.1:1"})
	require.Error(t, err)
}

func TestSubjectToken(t *testing.T) {
	assert.Equal(t, "_", subjectToken(""))
	assert.Equal(t, "a_b_c_", subjectToken("a.b*c>"))
}
