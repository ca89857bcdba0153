// Package daemon runs lesswatch in the background: filesystem events are
// routed to one worker per profile, which compiles changed sources and keeps
// output mirrors in step with moved, copied and deleted files.
package daemon
