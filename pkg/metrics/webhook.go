package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for webhook deliveries and line items.
const (
	OutcomeProcessed = "processed"
	OutcomeIgnored   = "ignored"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// WebhookMetrics records payment provider deliveries. A nil *WebhookMetrics
// is valid and records nothing.
type WebhookMetrics struct {
	events    *prometheus.CounterVec
	lineItems *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Webhook deliveries by event type and outcome.",
	}, []string{"type", "outcome"})
	lineItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_line_items_total",
		Help: "Checkout line items by materialization outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_duration_seconds",
		Help:    "Time spent handling a verified webhook event.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
	reg.MustRegister(events, lineItems, duration)
	return &WebhookMetrics{
		events:    events,
		lineItems: lineItems,
		duration:  duration,
	}
}

// IncEvent counts one delivery of eventType with the given outcome.
func (m *WebhookMetrics) IncEvent(eventType, outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// IncLineItem counts one processed checkout line item.
func (m *WebhookMetrics) IncLineItem(outcome string) {
	if m == nil || m.lineItems == nil {
		return
	}
	m.lineItems.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *WebhookMetrics) ObserveDuration(eventType string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(eventType)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
