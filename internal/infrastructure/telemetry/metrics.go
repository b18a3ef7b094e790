package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Publish frame labels.
const (
	FrameValue     = "value"
	FrameDiscovery = "discovery"
	FrameGrouped   = "grouped"
)

// Metrics holds the Prometheus collectors for one agent.
//
// A nil *Metrics is valid and records nothing, so components can be
// constructed without telemetry.
type Metrics struct {
	publishes       *prometheus.CounterVec
	publishFailures *prometheus.CounterVec
	readerFailures  *prometheus.CounterVec
	connectWaits    prometheus.Counter
	connected       prometheus.Gauge
	cycleDuration   prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostmon_publish_total",
			Help: "Messages successfully handed to the broker.",
		}, []string{"frame"}),
		publishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostmon_publish_failures_total",
			Help: "Publishes rejected by the transport.",
		}, []string{"frame"}),
		readerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hostmon_reader_failures_total",
			Help: "Metric probes that failed and were reported as absent.",
		}, []string{"metric"}),
		connectWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hostmon_connect_waits_total",
			Help: "Backoff waits spent waiting for a broker connection.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hostmon_broker_connected",
			Help: "1 while the broker session is connected.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hostmon_cycle_duration_seconds",
			Help:    "Wall time of one reporting cycle including publish spacing.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}

	reg.MustRegister(
		m.publishes,
		m.publishFailures,
		m.readerFailures,
		m.connectWaits,
		m.connected,
		m.cycleDuration,
	)

	return m
}

// Published records a successful publish.
func (m *Metrics) Published(frame string) {
	if m == nil {
		return
	}
	m.publishes.WithLabelValues(frame).Inc()
}

// PublishFailed records a failed publish.
func (m *Metrics) PublishFailed(frame string) {
	if m == nil {
		return
	}
	m.publishFailures.WithLabelValues(frame).Inc()
}

// ReaderFailed records a probe failure for metric.
func (m *Metrics) ReaderFailed(metric string) {
	if m == nil {
		return
	}
	m.readerFailures.WithLabelValues(metric).Inc()
}

// ConnectWait records one backoff wait.
func (m *Metrics) ConnectWait() {
	if m == nil {
		return
	}
	m.connectWaits.Inc()
}

// SetConnected updates the connection gauge.
func (m *Metrics) SetConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}

// ObserveCycle records the duration of a reporting cycle.
func (m *Metrics) ObserveCycle(d time.Duration) {
	if m == nil {
		return
	}
	m.cycleDuration.Observe(d.Seconds())
}
