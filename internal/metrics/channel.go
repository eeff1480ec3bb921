package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChannelMetrics records push channel activity. It satisfies
// channel.Recorder.
type ChannelMetrics struct {
	Open             prometheus.Gauge
	Reconnects       prometheus.Counter
	MessagesReceived *prometheus.CounterVec
}

func NewChannelMetrics(reg prometheus.Registerer) *ChannelMetrics {
	m := &ChannelMetrics{
		Open: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "connected",
			Help:      "1 while the push channel is open.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "reconnects_total",
			Help:      "Total number of redial attempts.",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "messages_received_total",
			Help:      "Total number of inbound messages, by classification.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.Open, m.Reconnects, m.MessagesReceived)
	return m
}

func (m *ChannelMetrics) MessageReceived(kind string) {
	m.MessagesReceived.WithLabelValues(kind).Inc()
}

func (m *ChannelMetrics) Connected() {
	m.Open.Set(1)
}

func (m *ChannelMetrics) Disconnected() {
	m.Open.Set(0)
}

// Reconnecting is meant for channel.WithReconnectCallback.
func (m *ChannelMetrics) Reconnecting() {
	m.Reconnects.Inc()
}
