package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
	"git.home.luguber.info/inful/lesswatch/internal/profile"
	"git.home.luguber.info/inful/lesswatch/internal/source"
)

type testRecorder struct {
	NoopRecorder
	durations   int
	outcomes    map[OutcomeLabel]int
	fileResults map[ResultLabel]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{outcomes: map[OutcomeLabel]int{}, fileResults: map[ResultLabel]int{}}
}

func (t *testRecorder) ObserveJobDuration(string, time.Duration)     { t.durations++ }
func (t *testRecorder) IncJobOutcome(_ string, outcome OutcomeLabel) { t.outcomes[outcome]++ }
func (t *testRecorder) IncFileResult(_ string, result ResultLabel)   { t.fileResults[result]++ }

type engineFunc func(src string) (string, error)

func (f engineFunc) Compile(_ context.Context, src, _ string, _ bool) (string, error) {
	return f(src)
}

func TestObserverRecordsJob(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.less"), []byte("a{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.less"), []byte(`@import "a";`), 0o600))
	p := profile.New("site", src, []string{out}, "", "", false)

	rec := newTestRecorder()
	obs := NewObserver(rec)
	ok := engineFunc(func(s string) (string, error) { return s, nil })
	require.NoError(t, compile.NewJob(source.Join(src, "a.less"), p, ok, compile.WithObservers(obs)).Compile(t.Context()))

	assert.Equal(t, 1, rec.durations)
	assert.Equal(t, 1, rec.outcomes[OutcomeSuccess])
	assert.Equal(t, 2, rec.fileResults[ResultChanged])

	fail := engineFunc(func(string) (string, error) { return "", errors.New("boom") })
	require.Error(t, compile.NewJob(source.Join(src, "a.less"), p, fail, compile.WithObservers(obs)).Compile(t.Context()))
	assert.Equal(t, 1, rec.outcomes[OutcomeFailed])
	assert.Empty(t, obs.starts)
}
