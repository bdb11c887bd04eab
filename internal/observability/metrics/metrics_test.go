package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestConversationMetricsObserve(t *testing.T) {
	m := NewConversationMetrics(prometheus.NewRegistry())
	m.ObserveTurn("respond", "confirmed", 0.25)
	m.ObserveTurn("extract", "", 0.01) // empty status maps to in_progress
	m.ObserveExternalFailure("availability")
}

func TestConversationMetricsNilSafe(t *testing.T) {
	var m *ConversationMetrics
	m.ObserveTurn("respond", "confirmed", 0.25)
	m.ObserveExternalFailure("generation")
}

func TestWebhookMetricsObserve(t *testing.T) {
	m := NewWebhookMetrics(prometheus.NewRegistry())
	m.ObserveInbound("whatsapp", "ok")
	m.ObserveWebhookLatency("whatsapp", 0.5)
}

func TestWebhookMetricsNilSafe(t *testing.T) {
	var m *WebhookMetrics
	m.ObserveInbound("voice", "ok")
	m.ObserveWebhookLatency("voice", 0.1)
}

func TestMetricsRegisterDistinctCollectors(t *testing.T) {
	// Both metric sets must coexist on one registry without collisions.
	reg := prometheus.NewRegistry()
	NewConversationMetrics(reg)
	NewWebhookMetrics(reg)
}
