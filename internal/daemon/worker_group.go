package daemon

import (
	"context"
	"slices"
	"sync"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
)

// WorkerGroup runs named daemon goroutines. Go refuses new work once
// StopAndWait has been called.
type WorkerGroup struct {
	mu       sync.Mutex
	wg       sync.WaitGroup
	running  map[string]int
	stopping bool
}

// Go starts fn under name unless the group is stopping.
func (g *WorkerGroup) Go(name string, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopping || fn == nil {
		return false
	}
	if g.running == nil {
		g.running = make(map[string]int)
	}
	g.running[name]++
	g.wg.Add(1)
	go func() {
		defer g.done(name)
		fn()
	}()
	return true
}

func (g *WorkerGroup) done(name string) {
	g.mu.Lock()
	if g.running[name]--; g.running[name] <= 0 {
		delete(g.running, name)
	}
	g.mu.Unlock()
	g.wg.Done()
}

// Running returns the sorted names of workers that have not returned.
func (g *WorkerGroup) Running() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(g.running))
	for n := range g.running {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// StopAndWait waits for running workers, bounded by ctx. On timeout the
// error names the workers still running.
func (g *WorkerGroup) StopAndWait(ctx context.Context) error {
	g.mu.Lock()
	g.stopping = true
	g.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ferrors.DaemonError("workers did not stop").
			WithCause(ctx.Err()).
			WithContext("workers", g.Running()).
			Build()
	}
}
