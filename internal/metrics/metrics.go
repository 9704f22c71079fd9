// Package metrics provides Prometheus metrics for formchat.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels used on transition counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
)

// Metrics holds every collector formchat exports. Collectors live on a private
// registry so tests and embedded use never collide with the default one.
type Metrics struct {
	registry *prometheus.Registry

	// Conversation metrics
	TransitionsTotal   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	CallsInFlight      prometheus.Gauge
	BusyRejectedTotal  *prometheus.CounterVec

	// Submission metrics
	ValidationFailuresTotal *prometheus.CounterVec
	SubmissionsTotal        *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	WebsocketClients    prometheus.Gauge

	ServerStartTime time.Time
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry:        reg,
		ServerStartTime: time.Now(),
	}

	m.TransitionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formchat_transitions_total",
			Help: "Total number of conversation transitions by outcome",
		},
		[]string{"transition", "outcome"},
	)

	m.GenerationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "formchat_generation_duration_seconds",
			Help:    "Duration of calls to the generation service in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"transition"},
	)

	m.CallsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "formchat_calls_in_flight",
			Help: "Number of network-backed transitions currently in flight",
		},
	)

	m.BusyRejectedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formchat_busy_rejected_total",
			Help: "Transitions rejected because another call was in flight",
		},
		[]string{"transition"},
	)

	m.ValidationFailuresTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formchat_validation_failures_total",
			Help: "Local validation failures that blocked a network call",
		},
		[]string{"scope"},
	)

	m.SubmissionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formchat_submissions_total",
			Help: "Total number of form submissions by outcome",
		},
		[]string{"outcome"},
	)

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formchat_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "formchat_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.WebsocketClients = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "formchat_websocket_clients",
			Help: "Number of connected draft snapshot subscribers",
		},
	)

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveTransition records the outcome and latency of one transition.
func (m *Metrics) ObserveTransition(transition, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(transition, outcome).Inc()
	m.GenerationDuration.WithLabelValues(transition).Observe(elapsed.Seconds())
}

// TrackInFlight increments the in-flight gauge and returns the matching
// decrement.
func (m *Metrics) TrackInFlight() func() {
	if m == nil {
		return func() {}
	}
	m.CallsInFlight.Inc()
	return m.CallsInFlight.Dec
}

// RejectBusy counts a transition refused while another call was pending.
func (m *Metrics) RejectBusy(transition string) {
	if m == nil {
		return
	}
	m.BusyRejectedTotal.WithLabelValues(transition).Inc()
}

// ValidationFailed counts a locally blocked request.
func (m *Metrics) ValidationFailed(scope string) {
	if m == nil {
		return
	}
	m.ValidationFailuresTotal.WithLabelValues(scope).Inc()
}

// ObserveSubmission counts a submit attempt by outcome.
func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// TrackWebsocket increments the connected-clients gauge and returns the
// matching decrement.
func (m *Metrics) TrackWebsocket() func() {
	if m == nil {
		return func() {}
	}
	m.WebsocketClients.Inc()
	return m.WebsocketClients.Dec
}
