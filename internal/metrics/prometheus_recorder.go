package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "lesswatch"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once         sync.Once
	jobDuration  *prom.HistogramVec
	jobOutcomes  *prom.CounterVec
	fileResults  *prom.CounterVec
	watchEvents  *prom.CounterVec
	relocations  *prom.CounterVec
	pendingQueue *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.jobDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of compile jobs",
			Buckets:   prom.DefBuckets,
		}, []string{"profile"})
		pr.jobOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "job_outcomes_total",
			Help:      "Compile job outcomes by final status",
		}, []string{"profile", "outcome"})
		pr.fileResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "file_results_total",
			Help:      "Per-file compile results",
		}, []string{"profile", "result"})
		pr.watchEvents = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "watch_events_total",
			Help:      "Filesystem events received by the daemon",
		}, []string{"op"})
		pr.relocations = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "relocations_total",
			Help:      "Output relocations by kind and whether they were applied",
		}, []string{"kind", "result"})
		pr.pendingQueue = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_events",
			Help:      "Events waiting for a profile worker",
		}, []string{"profile"})
		reg.MustRegister(pr.jobDuration, pr.jobOutcomes, pr.fileResults, pr.watchEvents, pr.relocations, pr.pendingQueue)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveJobDuration(profile string, d time.Duration) {
	if p == nil || p.jobDuration == nil {
		return
	}
	p.jobDuration.WithLabelValues(profile).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncJobOutcome(profile string, outcome OutcomeLabel) {
	if p == nil || p.jobOutcomes == nil {
		return
	}
	p.jobOutcomes.WithLabelValues(profile, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncFileResult(profile string, result ResultLabel) {
	if p == nil || p.fileResults == nil {
		return
	}
	p.fileResults.WithLabelValues(profile, string(result)).Inc()
}

func (p *PrometheusRecorder) IncWatchEvent(op string) {
	if p == nil || p.watchEvents == nil {
		return
	}
	p.watchEvents.WithLabelValues(op).Inc()
}

func (p *PrometheusRecorder) IncRelocation(kind string, applied bool) {
	if p == nil || p.relocations == nil {
		return
	}
	res := "declined"
	if applied {
		res = "applied"
	}
	p.relocations.WithLabelValues(kind, res).Inc()
}

func (p *PrometheusRecorder) SetPendingEvents(profile string, n int) {
	if p == nil || p.pendingQueue == nil {
		return
	}
	p.pendingQueue.WithLabelValues(profile).Set(float64(n))
}
