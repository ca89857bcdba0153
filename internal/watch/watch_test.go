package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lesswatch/internal/source"
)

func startWatcher(t *testing.T, root string, opts ...Option) *Watcher {
	t.Helper()
	w, err := New([]string{root}, opts...)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

// next returns the first event matching op, skipping others.
func next(t *testing.T, w *Watcher, op Op) Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Op == op {
				return ev
			}
		case <-timeout:
			t.Fatalf("no %s event", op)
			return Event{}
		}
	}
}

func TestWatcherReportsCreatedSources(t *testing.T) {
	root := source.Canonical(t.TempDir())
	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".a.less.swp"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.less"), []byte("a{}"), 0o600))

	ev := next(t, w, Created)
	assert.Equal(t, filepath.Join(root, "a.less"), ev.Path)
}

func TestWatcherWatchesNewDirectories(t *testing.T) {
	root := source.Canonical(t.TempDir())
	w := startWatcher(t, root)

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o750))
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.less"), []byte("b{}"), 0o600))

	ev := next(t, w, Created)
	assert.Equal(t, filepath.Join(sub, "b.less"), ev.Path)
}

func TestWatcherPairsMoves(t *testing.T) {
	root := source.Canonical(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "x.less"), []byte("x{}"), 0o600))
	w := startWatcher(t, root)

	require.NoError(t, os.Rename(filepath.Join(root, "a", "x.less"), filepath.Join(root, "b", "x.less")))

	ev := next(t, w, Moved)
	assert.Equal(t, filepath.Join(root, "b", "x.less"), ev.Path)
	assert.Equal(t, filepath.Join(root, "a"), ev.OldParent)
}

func TestWatcherReportsMovesOutOfTreeAsDeleted(t *testing.T) {
	root := source.Canonical(t.TempDir())
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "x.less"), []byte("x{}"), 0o600))
	w := startWatcher(t, root, WithPairWindow(50*time.Millisecond))

	require.NoError(t, os.Rename(filepath.Join(root, "x.less"), filepath.Join(outside, "x.less")))

	ev := next(t, w, Deleted)
	assert.Equal(t, filepath.Join(root, "x.less"), ev.Path)
}

func TestIgnoreMatcher(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("vendor/\n*.tmp.less\n"), 0o600))

	m, err := NewIgnoreMatcher(root)
	require.NoError(t, err)
	assert.True(t, m.Match(filepath.Join(root, "vendor"), true))
	assert.True(t, m.Match(filepath.Join(root, "vendor", "a.less"), false))
	assert.True(t, m.Match(filepath.Join(root, "sub", "x.tmp.less"), false))
	assert.False(t, m.Match(filepath.Join(root, "site.less"), false))
	assert.False(t, m.Match(filepath.Join(t.TempDir(), "vendor", "a.less"), false))
}

func TestShouldIgnoreName(t *testing.T) {
	for _, name := range []string{".hidden.less", "a.less~", "a.less.swp", "#a.less#", "Thumbs.db"} {
		assert.True(t, shouldIgnoreName(filepath.Join("/src", name)), name)
	}
	assert.False(t, shouldIgnoreName("/src/a.less"))
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "created /s/a.less", Event{Op: Created, Path: "/s/a.less"}.String())
	assert.Equal(t, "moved /s/b/a.less (from /s/a)", Event{Op: Moved, Path: "/s/b/a.less", OldParent: "/s/a"}.String())
}
