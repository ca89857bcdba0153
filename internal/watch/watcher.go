package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/golang-lru/v2/expirable"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/logfields"
	"git.home.luguber.info/inful/lesswatch/internal/source"
)

// DefaultPairWindow is how long a Rename waits for its matching Create.
const DefaultPairWindow = 200 * time.Millisecond

type pendingRename struct {
	oldPath string
	isDir   bool
	paired  bool
}

// Watcher recursively watches source roots.
type Watcher struct {
	fs      *fsnotify.Watcher
	roots   []string
	ignores map[string]*IgnoreMatcher

	mu      sync.Mutex
	renames *expirable.LRU[string, *pendingRename]

	events chan Event
	done   chan struct{}
	once   sync.Once
}

// Option configures a Watcher.
type Option func(*options)

type options struct {
	gitignore  bool
	pairWindow time.Duration
	buffer     int
}

// WithGitignore drops events for paths matched by .gitignore files in the roots.
func WithGitignore(enabled bool) Option {
	return func(o *options) { o.gitignore = enabled }
}

// WithPairWindow overrides DefaultPairWindow.
func WithPairWindow(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pairWindow = d
		}
	}
}

// New starts watching every directory below roots.
func New(roots []string, opts ...Option) (*Watcher, error) {
	o := options{pairWindow: DefaultPairWindow, buffer: 64}
	for _, opt := range opts {
		opt(&o)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.DaemonError("cannot create filesystem watcher").WithCause(err).Build()
	}
	w := &Watcher{
		fs:      fw,
		ignores: make(map[string]*IgnoreMatcher),
		events:  make(chan Event, o.buffer),
		done:    make(chan struct{}),
	}
	w.renames = expirable.NewLRU[string, *pendingRename](1024, w.onRenameExpired, o.pairWindow)

	for _, r := range roots {
		root := source.Canonical(r)
		w.roots = append(w.roots, root)
		if o.gitignore {
			m, err := NewIgnoreMatcher(root)
			if err != nil {
				slog.Warn("Cannot read .gitignore files", logfields.Path(root), logfields.Error(err))
			} else {
				w.ignores[root] = m
			}
		}
		if err := w.addDirsRecursive(root); err != nil {
			_ = fw.Close()
			return nil, ferrors.DaemonError("cannot watch source root").
				WithCause(err).
				WithContext("path", root).
				Build()
		}
	}
	return w, nil
}

// Events delivers translated events. The channel is never closed; stop
// reading when the context passed to Run is done.
func (w *Watcher) Events() <-chan Event { return w.events }

// Close stops watching. Run returns afterwards.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

// Run translates fsnotify events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = w.Close()
			w.renames.Purge()
			return nil
		case <-w.done:
			w.renames.Purge()
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := source.Canonical(ev.Name)
	if shouldIgnoreName(path) {
		return
	}
	slog.Debug("File change detected", logfields.Path(path), "op", ev.Op.String())

	switch {
	case ev.Has(fsnotify.Create):
		isDir := isDirectory(path)
		if w.ignored(path, isDir) {
			return
		}
		if isDir {
			_ = w.addDirsRecursive(path)
		}
		if old, ok := w.takeRename(path); ok {
			w.emitMoved(path, old, isDir)
			return
		}
		if isDir {
			w.emitTree(path, Created, "")
			return
		}
		w.emitFile(Event{Op: Created, Path: path})
	case ev.Has(fsnotify.Write):
		if !w.ignored(path, false) {
			w.emitFile(Event{Op: Modified, Path: path})
		}
	case ev.Has(fsnotify.Rename):
		w.mu.Lock()
		w.renames.Add(filepath.Base(path), &pendingRename{oldPath: path, isDir: !source.IsSourceFile(path)})
		w.mu.Unlock()
	case ev.Has(fsnotify.Remove):
		if !w.ignored(path, false) {
			w.emitFile(Event{Op: Deleted, Path: path})
		}
	}
}

// takeRename consumes a pending rename with the same base name as path.
func (w *Watcher) takeRename(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := filepath.Base(path)
	p, ok := w.renames.Peek(key)
	if !ok {
		return "", false
	}
	p.paired = true
	w.renames.Remove(key)
	return p.oldPath, true
}

func (w *Watcher) onRenameExpired(_ string, p *pendingRename) {
	if p.paired || p.isDir {
		return
	}
	// Runs under the cache lock; hand off so the send cannot block it.
	go w.emitFile(Event{Op: Deleted, Path: p.oldPath})
}

func (w *Watcher) emitMoved(path, oldPath string, isDir bool) {
	if !isDir {
		w.emitFile(Event{Op: Moved, Path: path, OldParent: filepath.Dir(oldPath)})
		return
	}
	_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !source.IsSourceFile(p) {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return nil
		}
		w.emitFile(Event{Op: Moved, Path: p, OldParent: filepath.Dir(filepath.Join(oldPath, rel))})
		return nil
	})
}

func (w *Watcher) emitTree(dir string, op Op, oldParent string) {
	_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		w.emitFile(Event{Op: op, Path: p, OldParent: oldParent})
		return nil
	})
}

func (w *Watcher) emitFile(ev Event) {
	if !source.IsSourceFile(ev.Path) || shouldIgnoreName(ev.Path) || w.ignored(ev.Path, false) {
		return
	}
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

func (w *Watcher) ignored(path string, isDir bool) bool {
	for root, m := range w.ignores {
		if source.IsAncestor(root, path) && m.Match(path, isDir) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirsRecursive(root string) error {
	st, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (shouldIgnoreName(path) || w.ignored(path, true)) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

func isDirectory(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
