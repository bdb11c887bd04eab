package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for booking conversations.
type ConversationMetrics struct {
	turnsTotal       *prometheus.CounterVec
	externalFailures *prometheus.CounterVec
	turnLatency      *prometheus.HistogramVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total conversation turns processed",
		}, []string{"action", "booking_status"}),
		externalFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "conversation",
			Name:      "external_failures_total",
			Help:      "Failures from external collaborators (LLM, PMS)",
		}, []string{"dependency"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "concierge",
			Subsystem: "conversation",
			Name:      "turn_latency_seconds",
			Help:      "Latency of a full conversation turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.externalFailures, m.turnLatency)
	return m
}

func (m *ConversationMetrics) ObserveTurn(action, bookingStatus string, seconds float64) {
	if m == nil {
		return
	}
	if bookingStatus == "" {
		bookingStatus = "in_progress"
	}
	m.turnsTotal.WithLabelValues(action, bookingStatus).Inc()
	m.turnLatency.WithLabelValues(action).Observe(seconds)
}

func (m *ConversationMetrics) ObserveExternalFailure(dependency string) {
	if m == nil {
		return
	}
	m.externalFailures.WithLabelValues(dependency).Inc()
}

// WebhookMetrics exposes counters/histograms for channel webhooks.
type WebhookMetrics struct {
	inboundTotal   *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "channels",
			Name:      "inbound_total",
			Help:      "Total inbound channel events",
		}, []string{"channel", "status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "concierge",
			Subsystem: "channels",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of inbound webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.webhookLatency)
	return m
}

func (m *WebhookMetrics) ObserveInbound(channel, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(channel, status).Inc()
}

func (m *WebhookMetrics) ObserveWebhookLatency(channel string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(channel).Observe(seconds)
}
