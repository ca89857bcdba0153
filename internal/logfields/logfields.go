package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyJobID      = "job_id"
	KeyProfile    = "profile"
	KeySource     = "source"
	KeyOutputRoot = "output_root"
	KeyPath       = "path"
	KeyEvent      = "event"
	KeyChanged    = "changed"
	KeyFiles      = "files"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func JobID(id string) slog.Attr       { return slog.String(KeyJobID, id) }
func Profile(name string) slog.Attr   { return slog.String(KeyProfile, name) }
func Source(path string) slog.Attr    { return slog.String(KeySource, path) }
func OutputRoot(dir string) slog.Attr { return slog.String(KeyOutputRoot, dir) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Event(kind string) slog.Attr     { return slog.String(KeyEvent, kind) }
func Changed(n int) slog.Attr         { return slog.Int(KeyChanged, n) }
func Files(n int) slog.Attr           { return slog.Int(KeyFiles, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
