package compile

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/lesswatch/internal/logfields"
)

// LogObserver writes job progress to slog.
type LogObserver struct {
	Logger *slog.Logger
}

// NewLogObserver returns a LogObserver using logger, or slog.Default when nil.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) OnEvent(j *Job, e Event) {
	attrs := []any{
		logfields.JobID(j.ID),
		logfields.Profile(j.Profile().Name),
		logfields.Event(EventName(e)),
	}
	switch ev := e.(type) {
	case Started:
		o.Logger.Info("Compile started", append(attrs,
			logfields.Source(j.Trigger().Path()),
			logfields.Files(len(ev.Files)))...)
	case Changed:
		o.Logger.Info("Output updated", append(attrs, logfields.Source(ev.File.Path()))...)
	case Unchanged:
		o.Logger.Debug("Output unchanged", append(attrs, logfields.Source(ev.File.Path()))...)
	case Finished:
		if err := j.Err(); err != nil {
			o.Logger.Error("Compile failed", append(attrs, logfields.Changed(ev.Count), logfields.Error(err))...)
			return
		}
		o.Logger.Info(Summary(ev.Count), append(attrs, logfields.Changed(ev.Count))...)
	}
}

// Summary returns the human-readable outcome line for a job that changed
// count files.
func Summary(count int) string {
	switch count {
	case 0:
		return "No output files changed"
	case 1:
		return "1 file compiled"
	default:
		return fmt.Sprintf("%d files compiled", count)
	}
}
