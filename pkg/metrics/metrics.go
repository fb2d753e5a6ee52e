// Package metrics provides Prometheus instrumentation for the librarian bot.
// A Metrics value is shared by the cycle driver and the API clients; the
// collectors are registered on a caller-supplied registry so tests can use
// isolated registries.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the bot's Prometheus collectors.
type Metrics struct {
	// CyclesTotal counts completed poll cycles, labeled by outcome.
	CyclesTotal *prometheus.CounterVec

	// MessagesSeen counts unread messages fetched from the inbox.
	MessagesSeen prometheus.Counter

	// RepliesSent counts replies posted.
	RepliesSent prometheus.Counter

	// PagesResolved counts wiki pages resolved across all cycles.
	PagesResolved prometheus.Counter

	// APIErrors counts upstream API failures, labeled by service.
	APIErrors *prometheus.CounterVec

	// RateBudget tracks the most recently reported rate-limit remaining count.
	RateBudget prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Metrics with all collectors registered on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "librarian_cycles_total",
			Help: "Completed poll cycles by outcome.",
		}, []string{"outcome"}),
		MessagesSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "librarian_messages_seen_total",
			Help: "Unread inbox messages fetched.",
		}),
		RepliesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "librarian_replies_sent_total",
			Help: "Replies posted to messages.",
		}),
		PagesResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "librarian_pages_resolved_total",
			Help: "Wiki pages resolved from mentions.",
		}),
		APIErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "librarian_api_errors_total",
			Help: "Upstream API failures by service.",
		}, []string{"service"}),
		RateBudget: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "librarian_rate_budget_remaining",
			Help: "Most recently reported rate-limit remaining count.",
		}),
		registry: reg,
	}

	reg.MustRegister(
		m.CyclesTotal,
		m.MessagesSeen,
		m.RepliesSent,
		m.PagesResolved,
		m.APIErrors,
		m.RateBudget,
	)

	return m
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
