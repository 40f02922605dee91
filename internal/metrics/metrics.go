// Package metrics exposes the service's Prometheus instruments.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kbgen"

// Metrics groups every instrument the service records.
type Metrics struct {
	generations        *prometheus.CounterVec
	generationDuration prometheus.Observer
	enqueueResults     *prometheus.CounterVec
	queueTransitions   *prometheus.CounterVec
	articlesSaved      *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	rateLimited        prometheus.Counter
}

var (
	once sync.Once
	inst *Metrics
)

// Default returns the process-wide metrics, registering them on first use.
func Default() *Metrics {
	once.Do(func() {
		inst = newMetrics()
	})
	return inst
}

func newMetrics() *Metrics {
	return &Metrics{
		generations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "Article generation calls, labeled by outcome",
		}, []string{"outcome"}),
		generationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Time spent waiting on the generation endpoint",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		}),
		enqueueResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "enqueue_total",
			Help:      "Ticket-close enqueue attempts, labeled by result",
		}, []string{"result"}),
		queueTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "transitions_total",
			Help:      "Queue rows affected, labeled by transition",
		}, []string{"transition"}),
		articlesSaved: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kb",
			Name:      "articles_saved_total",
			Help:      "KB articles saved, labeled by mode (created or replaced)",
		}, []string{"mode"}),
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Admin and hook HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin and hook HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Generation requests rejected by the rate limiter",
		}),
	}
}

// ObserveGeneration records one generation call.
func (m *Metrics) ObserveGeneration(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
	m.generationDuration.Observe(took.Seconds())
}

// EnqueueResult records the outcome of a ticket-close enqueue.
func (m *Metrics) EnqueueResult(result string) {
	if m == nil {
		return
	}
	m.enqueueResults.WithLabelValues(result).Inc()
}

// QueueTransition adds n to the transition counter.
func (m *Metrics) QueueTransition(transition string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.queueTransitions.WithLabelValues(transition).Add(float64(n))
}

// ArticleSaved records a saved article.
func (m *Metrics) ArticleSaved(replaced bool) {
	if m == nil {
		return
	}
	mode := "created"
	if replaced {
		mode = "replaced"
	}
	m.articlesSaved.WithLabelValues(mode).Inc()
}

// ObserveHTTP records one HTTP request.
func (m *Metrics) ObserveHTTP(method, route, status string, took time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

// RateLimited records a rejected request.
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
