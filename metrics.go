package relayq

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the dispatch lifecycle,
// cache, queue and retry layers. It is safe for concurrent use; a nil
// collector is a no-op on every method.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	retriesTotal *prometheus.CounterVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheSize   *prometheus.GaugeVec

	coalescedHits *prometheus.CounterVec

	queuePending *prometheus.GaugeVec
	queueRunning *prometheus.GaugeVec

	errorsTotal *prometheus.CounterVec

	observerPanics prometheus.Counter
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "relayq_requests_total",
				Help: "Total number of HTTP requests dispatched",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relayq_request_duration_seconds",
				Help:    "Duration of dispatched requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "relayq_requests_in_flight",
				Help: "Number of requests currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "relayq_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"method", "endpoint", "attempt"},
		),
		cacheHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "relayq_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"method", "endpoint"},
		),
		cacheMisses: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "relayq_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"method", "endpoint"},
		),
		cacheSize: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "relayq_cache_size",
				Help: "Current number of entries in cache",
			},
			[]string{"name"},
		),
		coalescedHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "relayq_coalesced_hits_total",
				Help: "Total number of requests that joined an identical in-flight request",
			},
			[]string{"method", "endpoint"},
		),
		queuePending: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "relayq_queue_pending",
				Help: "Number of tasks waiting for a queue slot",
			},
			[]string{"name"},
		),
		queueRunning: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "relayq_queue_running",
				Help: "Number of tasks currently executing",
			},
			[]string{"name"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "relayq_errors_total",
				Help: "Total number of classified failures",
			},
			[]string{"kind", "method", "endpoint"},
		),
		observerPanics: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "relayq_observer_panics_total",
				Help: "Total number of recovered observer panics",
			},
		),
	}
}

// RecordRequest records request count and duration.
func (mc *MetricsCollector) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(method, statusCodeStr, endpoint).Inc()
	mc.requestDuration.WithLabelValues(method, statusCodeStr, endpoint).Observe(duration.Seconds())
}

// RecordRequestStart increments the in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Inc()
}

// RecordRequestEnd decrements the in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Dec()
}

// RecordRetry increments the retry counter for an attempt.
func (mc *MetricsCollector) RecordRetry(method, endpoint string, attempt int) {
	if mc == nil {
		return
	}

	mc.retriesTotal.WithLabelValues(method, endpoint, strconv.Itoa(attempt)).Inc()
}

// RecordCacheHit increments the cache hit counter.
func (mc *MetricsCollector) RecordCacheHit(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.cacheHits.WithLabelValues(method, endpoint).Inc()
}

// RecordCacheMiss increments the cache miss counter.
func (mc *MetricsCollector) RecordCacheMiss(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.cacheMisses.WithLabelValues(method, endpoint).Inc()
}

// RecordCacheSize sets the cache size gauge.
func (mc *MetricsCollector) RecordCacheSize(name string, size int) {
	if mc == nil {
		return
	}

	mc.cacheSize.WithLabelValues(name).Set(float64(size))
}

// RecordCoalescedHit increments the in-flight coalescing counter.
func (mc *MetricsCollector) RecordCoalescedHit(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.coalescedHits.WithLabelValues(method, endpoint).Inc()
}

// RecordQueueState sets the queue depth gauges.
func (mc *MetricsCollector) RecordQueueState(name string, pending, running int) {
	if mc == nil {
		return
	}

	mc.queuePending.WithLabelValues(name).Set(float64(pending))
	mc.queueRunning.WithLabelValues(name).Set(float64(running))
}

// RecordError increments the error counter by failure kind.
func (mc *MetricsCollector) RecordError(kind, method, endpoint string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(kind, method, endpoint).Inc()
}

// RecordObserverPanic increments the recovered observer panic counter.
func (mc *MetricsCollector) RecordObserverPanic() {
	if mc == nil {
		return
	}

	mc.observerPanics.Inc()
}
