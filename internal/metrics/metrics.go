package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	SubmissionsTotal   *prometheus.CounterVec
	EventsDelivered    *prometheus.CounterVec
	ConnectionsDropped prometheus.Counter
	LiveConnections    prometheus.Gauge
	PlatformLatency    *prometheus.HistogramVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "song_submissions_total",
			Help: "Total song submissions by outcome.",
		}, []string{"result"}),

		EventsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "broadcast_events_delivered_total",
			Help: "Queue-change events delivered to live connections.",
		}, []string{"type"}),

		ConnectionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "broadcast_connections_dropped_total",
			Help: "Live connections dropped after a failed or timed-out delivery.",
		}),

		LiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "live_connections",
			Help: "Currently registered live connections.",
		}),

		PlatformLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "video_platform_request_seconds",
			Help:    "Latency of calls to the video metadata platform.",
			Buckets: prometheus.DefBuckets,
		}, []string{"call"}),
	}

	reg.MustRegister(
		m.SubmissionsTotal,
		m.EventsDelivered,
		m.ConnectionsDropped,
		m.LiveConnections,
		m.PlatformLatency,
	)

	return m
}

// SubmitHook returns the outcome callback expected by service.MetricHooks.
func (m *Metrics) SubmitHook() func(result string) {
	return func(result string) {
		m.SubmissionsTotal.WithLabelValues(result).Inc()
	}
}

// HubHooks returns the callbacks expected by hub.MetricHooks.
// Centralises the prometheus observation calls so the hub stays import-free.
func (m *Metrics) HubHooks() (
	onDelivered func(eventType string),
	onDropped func(),
	onLive func(count int),
) {
	onDelivered = func(eventType string) {
		m.EventsDelivered.WithLabelValues(eventType).Inc()
	}
	onDropped = func() {
		m.ConnectionsDropped.Inc()
	}
	onLive = func(count int) {
		m.LiveConnections.Set(float64(count))
	}
	return
}

// PlatformHook returns the latency callback expected by youtube.Options.
func (m *Metrics) PlatformHook() func(call string, latency time.Duration) {
	return func(call string, latency time.Duration) {
		m.PlatformLatency.WithLabelValues(call).Observe(latency.Seconds())
	}
}
