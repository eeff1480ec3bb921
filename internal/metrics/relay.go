package metrics

import "github.com/prometheus/client_golang/prometheus"

// RelayMetrics records queue and playback activity. It satisfies
// relay.Recorder.
type RelayMetrics struct {
	QueueDepthGauge prometheus.Gauge
	AlertsStarted   *prometheus.CounterVec
	AlertsCompleted *prometheus.CounterVec
}

func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	m := &RelayMetrics{
		QueueDepthGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Number of alerts waiting to be played.",
		}),
		AlertsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "started_total",
			Help:      "Total number of alerts taken off the queue.",
		}, []string{"kind"}),
		AlertsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "playback",
			Name:      "completed_total",
			Help:      "Total number of alerts that left the playback slot, by outcome.",
		}, []string{"kind", "outcome"}),
	}

	reg.MustRegister(m.QueueDepthGauge, m.AlertsStarted, m.AlertsCompleted)
	return m
}

func (m *RelayMetrics) QueueDepth(depth int) {
	m.QueueDepthGauge.Set(float64(depth))
}

func (m *RelayMetrics) AlertStarted(kind string) {
	m.AlertsStarted.WithLabelValues(kind).Inc()
}

func (m *RelayMetrics) AlertCompleted(kind, outcome string) {
	m.AlertsCompleted.WithLabelValues(kind, outcome).Inc()
}
