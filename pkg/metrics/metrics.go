// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SessionsActive tracks live widget sessions held in memory.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Number of live widget sessions",
		},
	)

	// TurnsTotal tracks processed user turns by which rule handled them.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total user turns processed, by handling rule",
		},
		[]string{"rule"},
	)

	// TurnsRejected tracks turns dropped by the busy/empty-input guards.
	TurnsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_rejected_total",
			Help: "Turns ignored by the engine guards",
		},
		[]string{"reason"},
	)

	// GenerationDuration tracks text-generation call duration.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "External text-generation call duration",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "status"},
	)

	// LeadCommitsTotal tracks lead commit attempts by outcome.
	LeadCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_commits_total",
			Help: "Lead commit attempts",
		},
		[]string{"status"},
	)

	// NotifyDispatchTotal tracks lead notification dispatches. Failures
	// are invisible to the user, so this is where they surface.
	NotifyDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notify_dispatch_total",
			Help: "Lead notification dispatch attempts",
		},
		[]string{"status"},
	)

	// SessionSaveFailures tracks swallowed transcript persistence errors.
	SessionSaveFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_save_failures_total",
			Help: "Transcript save errors swallowed by the session store",
		},
	)

	// WidgetEventsTotal tracks UI event hooks published to the bus.
	WidgetEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_events_total",
			Help: "UI event hooks published",
		},
		[]string{"type", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordGeneration records metrics for one text-generation call.
func RecordGeneration(provider, status string, duration float64) {
	GenerationDuration.WithLabelValues(provider, status).Observe(duration)
}
