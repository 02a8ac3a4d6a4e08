// Package metrics provides Prometheus metrics for the driftwatch engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every metric exported by the service.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingest
	mqttMessages    prometheus.Counter
	mqttConnected   prometheus.Gauge
	reportsIngested prometheus.Counter
	reportsRejected *prometheus.CounterVec

	// Queue
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueDrops    *prometheus.CounterVec

	// Detection
	anomalies         *prometheus.CounterVec
	evaluationLatency prometheus.Histogram
	vesselsTracked    prometheus.Gauge

	// Alerting
	alertsEmitted    *prometheus.CounterVec
	alertsSuppressed prometheus.Counter

	// HTTP ops surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager on a custom registry, so the default Go collectors
// never pollute the scrape.
var globalManager *Manager                       //nolint:gochecknoglobals // singleton metrics manager
var customRegistry = prometheus.NewRegistry()    //nolint:gochecknoglobals // backing registry for the singleton

func init() { //nolint:gochecknoinits // wire the global manager once
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "driftwatch",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	f := promauto.With(m.registry)

	m.mqttMessages = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "mqtt_messages_total",
		Help:      "Inbound MQTT messages, including ones later rejected.",
	})
	m.mqttConnected = f.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "mqtt_connected",
		Help:      "1 while the broker connection is up.",
	})
	m.reportsIngested = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "reports_ingested_total",
		Help:      "Position reports accepted into the queue.",
	})
	m.reportsRejected = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "reports_rejected_total",
		Help:      "Position reports rejected before evaluation.",
	}, []string{"reason"})

	m.queueSize = f.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "queue_size",
		Help:      "Reports currently buffered in the ingest queue.",
	})
	m.queueCapacity = f.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "queue_capacity",
		Help:      "Configured ingest queue capacity.",
	})
	m.queueDrops = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "queue_drops_total",
		Help:      "Enqueue attempts refused by the queue.",
	}, []string{"reason"})

	m.anomalies = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "anomalies_total",
		Help:      "Triggered anomaly rules by kind.",
	}, []string{"kind"})
	m.evaluationLatency = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "evaluation_latency_ms",
		Help:      "End-to-end latency of processing one report, milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.vesselsTracked = f.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "vessels_tracked",
		Help:      "Vessels with at least one report in history.",
	})

	m.alertsEmitted = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "alerts_emitted_total",
		Help:      "Alerts delivered to sinks, by danger level.",
	}, []string{"level"})
	m.alertsSuppressed = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "alerts_suppressed_total",
		Help:      "Alerts dropped inside a vessel's cooldown window.",
	})

	m.httpRequests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method, and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})

	return m
}

// GetRegistry returns the registry backing the global manager, for promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers over the global manager.

func RecordMQTTMessage() { globalManager.mqttMessages.Inc() }

func UpdateMQTTConnected(up bool) {
	if up {
		globalManager.mqttConnected.Set(1)
		return
	}
	globalManager.mqttConnected.Set(0)
}

func RecordReportIngested() { globalManager.reportsIngested.Inc() }

func RecordReportRejected(reason string) {
	globalManager.reportsRejected.WithLabelValues(reason).Inc()
}

func UpdateQueueSize(n int)     { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }

func RecordQueueDrop(reason string) {
	globalManager.queueDrops.WithLabelValues(reason).Inc()
}

func RecordAnomaly(kind string) {
	globalManager.anomalies.WithLabelValues(kind).Inc()
}

func RecordEvaluationLatency(ms float64) { globalManager.evaluationLatency.Observe(ms) }
func UpdateVesselsTracked(n int)         { globalManager.vesselsTracked.Set(float64(n)) }

func RecordAlertEmitted(level string) {
	globalManager.alertsEmitted.WithLabelValues(level).Inc()
}

func RecordAlertSuppressed() { globalManager.alertsSuppressed.Inc() }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}
