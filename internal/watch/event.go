// Package watch turns filesystem notifications under one or more source
// roots into stylesheet change events.
//
// fsnotify reports a move as a Rename of the old path followed by a Create
// of the new one. The watcher pairs the two by base name within a short
// window and emits a single Moved event; an unpaired Rename becomes Deleted.
// Copies are indistinguishable from creations at this level, so Copied
// events only come from callers that know better (the relocate command).
package watch

import "fmt"

// Op is the kind of change.
type Op int

const (
	Created Op = iota + 1
	Modified
	Deleted
	Moved
	Copied
)

func (o Op) String() string {
	switch o {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	case Moved:
		return "moved"
	case Copied:
		return "copied"
	default:
		return "unknown"
	}
}

// Event describes a change to one source file. OldParent is the previous
// directory for Moved and the original's directory for Copied.
type Event struct {
	Op        Op
	Path      string
	OldParent string
}

func (e Event) String() string {
	if e.OldParent != "" {
		return fmt.Sprintf("%s %s (from %s)", e.Op, e.Path, e.OldParent)
	}
	return fmt.Sprintf("%s %s", e.Op, e.Path)
}
