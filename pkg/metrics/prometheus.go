package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	syncAttempts  *prometheus.CounterVec
	syncMembers   prometheus.Histogram
	syncBytes     prometheus.Histogram
	eventAttempts *prometheus.CounterVec
	cycleDuration *prometheus.HistogramVec
}

// Compile-time assertion that PrometheusCollector implements Collector.
var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus creates a Prometheus-backed collector. A nil registerer
// falls back to prometheus.DefaultRegisterer; an empty namespace defaults
// to "statecast".
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "statecast"
	}
	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.syncAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "props",
			Name:      "state_sync_attempts_total",
			Help:      "Batched state sync attempts by outcome.",
		}, []string{"outcome"})
		p.syncMembers = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "props",
			Name:      "state_sync_members",
			Help:      "Properties staged per state sync.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		})
		p.syncBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "props",
			Name:      "state_sync_bytes",
			Help:      "Payload size per state sync in bytes.",
			Buckets:   prometheus.ExponentialBuckets(16, 2, 8),
		})
		p.eventAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "notify",
			Name:      "event_publish_attempts_total",
			Help:      "Notification publish attempts by event name and outcome.",
		}, []string{"event", "outcome"})
		p.cycleDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "cycle_duration_seconds",
			Help:      "Scheduler evaluation duration by engine.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"engine"})

		p.reg.MustRegister(
			p.syncAttempts,
			p.syncMembers,
			p.syncBytes,
			p.eventAttempts,
			p.cycleDuration,
		)
	})
}

// StateSync records a batched property publish attempt.
func (p *PrometheusCollector) StateSync(members, payloadBytes int, success bool) {
	p.ensureRegistered()
	p.syncAttempts.WithLabelValues(outcome(success)).Inc()
	p.syncMembers.Observe(float64(members))
	p.syncBytes.Observe(float64(payloadBytes))
}

// EventPublish records an individual notification publish attempt.
func (p *PrometheusCollector) EventPublish(eventName string, success bool) {
	p.ensureRegistered()
	p.eventAttempts.WithLabelValues(eventName, outcome(success)).Inc()
}

// CycleDuration records one scheduler evaluation.
func (p *PrometheusCollector) CycleDuration(engine string, d time.Duration) {
	p.ensureRegistered()
	p.cycleDuration.WithLabelValues(engine).Observe(d.Seconds())
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
