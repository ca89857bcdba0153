// Package metrics records compile and watch activity.
//
// Components receive a Recorder and default to NoopRecorder, so metrics cost
// nothing unless the daemon is started with a metrics address:
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	job := compile.NewJob(file, profile, engine,
//	    compile.WithObservers(metrics.NewObserver(recorder)))
//
// HTTPHandler exposes the registry for scraping.
package metrics
