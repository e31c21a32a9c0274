package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rosen_indexer"

// Metrics holds the ingestion collectors. A nil *Metrics records nothing.
type Metrics struct {
	blocks       *prometheus.CounterVec
	observations *prometheus.CounterVec
	forks        *prometheus.CounterVec
	saveDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg when it is not nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		blocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "blocks_total", Help: "Blocks processed by result"},
			[]string{"extractor", "result"},
		),
		observations: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "observations_total", Help: "Observations persisted"},
			[]string{"extractor"},
		),
		forks: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "forks_total", Help: "Fork rollbacks by result"},
			[]string{"extractor", "result"},
		),
		saveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: namespace, Name: "save_duration_seconds", Help: "Block save latency", Buckets: prometheus.DefBuckets},
			[]string{"extractor"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.blocks, m.observations, m.forks, m.saveDuration)
	}
	return m
}

// ObserveSave records one processed block and the observations it persisted.
func (m *Metrics) ObserveSave(extractor string, observations int, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.blocks.WithLabelValues(extractor, result(ok)).Inc()
	m.saveDuration.WithLabelValues(extractor).Observe(elapsed.Seconds())
	if ok && observations > 0 {
		m.observations.WithLabelValues(extractor).Add(float64(observations))
	}
}

// ObserveFork records one fork rollback.
func (m *Metrics) ObserveFork(extractor string, ok bool) {
	if m == nil {
		return
	}
	m.forks.WithLabelValues(extractor, result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
