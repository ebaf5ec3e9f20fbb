// Package metrics owns the Prometheus registry of the portal and every collector
// exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cohort"

type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	RateLimited  *prometheus.CounterVec

	CheckoutAttempts      *prometheus.CounterVec
	CheckoutStateDuration *prometheus.HistogramVec
	CheckoutSessions      prometheus.Gauge

	AvailabilityRefreshes *prometheus.CounterVec
	AvailabilityRanges    prometheus.Gauge

	CareerApplications *prometheus.CounterVec

	KafkaMessages *prometheus.CounterVec
	KafkaDuration *prometheus.HistogramVec
}

// New builds a registry with the Go and process collectors plus the portal's own.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}, []string{"route"}),

		CheckoutAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "attempts_total",
			Help:      "Finished checkout attempts by terminal state.",
		}, []string{"outcome"}),
		CheckoutStateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "state_duration_seconds",
			Help:      "Time spent in each checkout state.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300, 900},
		}, []string{"state"}),
		CheckoutSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "active_sessions",
			Help:      "Checkout sessions with an attempt in flight.",
		}),

		AvailabilityRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "availability",
			Name:      "refreshes_total",
			Help:      "Booked-dates refreshes by result and trigger.",
		}, []string{"result", "trigger"}),
		AvailabilityRanges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "availability",
			Name:      "booked_ranges",
			Help:      "Booked ranges in the current snapshot.",
		}),

		CareerApplications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "careers",
			Name:      "applications_total",
			Help:      "Career applications by result.",
		}, []string{"result"}),

		KafkaMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "messages_total",
			Help:      "Kafka messages produced or consumed, by topic and result.",
		}, []string{"direction", "topic", "result"}),
		KafkaDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "operation_duration_seconds",
			Help:      "Latency of Kafka publish and handler execution.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"direction", "topic"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.RateLimited,
		m.CheckoutAttempts,
		m.CheckoutStateDuration,
		m.CheckoutSessions,
		m.AvailabilityRefreshes,
		m.AvailabilityRanges,
		m.CareerApplications,
		m.KafkaMessages,
		m.KafkaDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRateLimited(route string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(route).Inc()
}

func (m *Metrics) ObserveCheckoutState(state string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CheckoutStateDuration.WithLabelValues(state).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCheckoutOutcome(outcome string) {
	if m == nil {
		return
	}
	m.CheckoutAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.CheckoutSessions.Inc()
}

func (m *Metrics) SessionFinished() {
	if m == nil {
		return
	}
	m.CheckoutSessions.Dec()
}

func (m *Metrics) ObserveRefresh(trigger string, err error, ranges int) {
	if m == nil {
		return
	}
	if err != nil {
		m.AvailabilityRefreshes.WithLabelValues("error", trigger).Inc()
		return
	}
	m.AvailabilityRefreshes.WithLabelValues("success", trigger).Inc()
	m.AvailabilityRanges.Set(float64(ranges))
}

func (m *Metrics) ObserveCareerApplication(result string) {
	if m == nil {
		return
	}
	m.CareerApplications.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveKafka(direction, topic string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.KafkaMessages.WithLabelValues(direction, topic, result).Inc()
	m.KafkaDuration.WithLabelValues(direction, topic).Observe(elapsed.Seconds())
}
