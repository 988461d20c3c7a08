package metrics

import "github.com/prometheus/client_golang/prometheus"

// ActionMetrics exposes counters/histograms for dialogue actions and the
// scheduling backend calls they make.
type ActionMetrics struct {
	actionsTotal   *prometheus.CounterVec
	backendTotal   *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
}

func NewActionMetrics(reg prometheus.Registerer) *ActionMetrics {
	m := &ActionMetrics{
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coleta",
			Subsystem: "actions",
			Name:      "runs_total",
			Help:      "Total dialogue action runs by outcome",
		}, []string{"action", "outcome"}),
		backendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coleta",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Total scheduling backend calls by outcome",
		}, []string{"method", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coleta",
			Subsystem: "backend",
			Name:      "call_latency_seconds",
			Help:      "Latency of scheduling backend calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.actionsTotal, m.backendTotal, m.backendLatency)
	return m
}

func (m *ActionMetrics) ObserveAction(action, outcome string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(action, outcome).Inc()
}

func (m *ActionMetrics) ObserveBackendCall(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.backendTotal.WithLabelValues(method, outcome).Inc()
	m.backendLatency.WithLabelValues(method).Observe(seconds)
}

// RelayMetrics exposes counters for the WhatsApp relay.
type RelayMetrics struct {
	inboundTotal   *prometheus.CounterVec
	outboundTotal  *prometheus.CounterVec
	forwardLatency prometheus.Histogram
}

func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	m := &RelayMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coleta",
			Subsystem: "relay",
			Name:      "inbound_total",
			Help:      "Total inbound channel messages by status",
		}, []string{"status"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coleta",
			Subsystem: "relay",
			Name:      "outbound_total",
			Help:      "Total outbound channel sends by status",
		}, []string{"status"}),
		forwardLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coleta",
			Subsystem: "relay",
			Name:      "dialogue_latency_seconds",
			Help:      "Latency of dialogue engine round trips",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal, m.forwardLatency)
	return m
}

func (m *RelayMetrics) ObserveInbound(status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(status).Inc()
}

func (m *RelayMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

func (m *RelayMetrics) ObserveDialogueLatency(seconds float64) {
	if m == nil {
		return
	}
	m.forwardLatency.Observe(seconds)
}
