package witness

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/radgo/internal/interpreter"
)

// Metrics are the stage counters. A nil *Metrics records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the stage metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radgo",
			Subsystem: "stage",
			Name:      "runs_total",
			Help:      "Stage executions by stage and result.",
		}, []string{"stage", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "radgo",
			Subsystem: "stage",
			Name:      "duration_seconds",
			Help:      "Wall time of a stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	reg.MustRegister(m.runs, m.duration)
	return m
}

func (m *Metrics) observe(stage string, elapsed time.Duration, report *interpreter.Report) {
	if m == nil {
		return
	}
	result := "ok"
	if report != nil && report.Failed() {
		result = "error"
	}
	m.runs.WithLabelValues(stage, result).Inc()
	m.duration.WithLabelValues(stage).Observe(elapsed.Seconds())
}
