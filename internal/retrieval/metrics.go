package retrieval

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the retrieval counters. A nil *Metrics records nothing.
type Metrics struct {
	fetches    *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	rejections prometheus.Counter
}

// NewMetrics creates the retrieval metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radgo",
			Subsystem: "retrieval",
			Name:      "fetches_total",
			Help:      "Fetches per source kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "radgo",
			Subsystem: "retrieval",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single fetch, script included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radgo",
			Subsystem: "retrieval",
			Name:      "paranoia_rejections_total",
			Help:      "Sources whose paths did not reach the paranoia threshold.",
		}),
	}
	reg.MustRegister(m.fetches, m.duration, m.rejections)
	return m
}

func (m *Metrics) observeFetch(kind Kind, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(string(kind), outcome).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(seconds)
}

func (m *Metrics) observeRejection() {
	if m == nil {
		return
	}
	m.rejections.Inc()
}
