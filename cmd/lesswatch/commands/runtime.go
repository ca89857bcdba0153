package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
	"git.home.luguber.info/inful/lesswatch/internal/config"
	"git.home.luguber.info/inful/lesswatch/internal/eventstore"
	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/logfields"
	"git.home.luguber.info/inful/lesswatch/internal/metrics"
	"git.home.luguber.info/inful/lesswatch/internal/notify"
	"git.home.luguber.info/inful/lesswatch/internal/profile"
)

// runtime holds the collaborators built from the configuration.
type runtime struct {
	cfg       *config.Config
	profiles  []*profile.Profile
	engine    compile.Engine
	observers []compile.Observer
	store     *eventstore.SQLiteStore
	history   *eventstore.HistoryObserver
	registry  *prom.Registry
	recorder  metrics.Recorder
	closers   []io.Closer
}

type runtimeOptions struct {
	metrics bool
	notify  bool
}

func newRuntime(cfg *config.Config, opts runtimeOptions) (*runtime, error) {
	rt := &runtime{
		cfg:       cfg,
		profiles:  cfg.ToProfiles(),
		engine:    cfg.NewEngine(),
		observers: []compile.Observer{compile.NewLogObserver(slog.Default())},
		recorder:  metrics.NoopRecorder{},
	}

	if opts.metrics {
		rt.registry = prom.NewRegistry()
		rec := metrics.NewPrometheusRecorder(rt.registry)
		rt.recorder = rec
		rt.observers = append(rt.observers, metrics.NewObserver(rec))
	}

	if err := rt.openHistory(); err != nil {
		rt.Close()
		return nil, err
	}

	if opts.notify && cfg.NATS.Enabled {
		pub, err := notify.NewNATSPublisher(notify.Options{
			URL:       cfg.NATS.URL,
			Subject:   cfg.NATS.Subject,
			JetStream: cfg.NATS.JetStream,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.observers = append(rt.observers, pub)
		rt.closers = append(rt.closers, pub)
	}
	return rt, nil
}

func (rt *runtime) openHistory() error {
	if rt.cfg.Daemon.HistoryDB == "" {
		return nil
	}
	path := rt.cfg.Resolve(rt.cfg.Daemon.HistoryDB)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // state directory is not secret
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot create history directory").
			WithContext("path", path).
			Build()
	}
	store, err := eventstore.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	rt.store = store
	rt.history = eventstore.NewHistoryObserver(store)
	rt.observers = append(rt.observers, rt.history)
	rt.closers = append(rt.closers, store)
	return nil
}

// relocationHistory returns the history sink, or nil when history is off.
func (rt *runtime) relocationHistory() *eventstore.HistoryObserver {
	return rt.history
}

// Close releases stores and connections in reverse order.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			slog.Warn("Failed to close resource", logfields.Error(err))
		}
	}
	rt.closers = nil
}
