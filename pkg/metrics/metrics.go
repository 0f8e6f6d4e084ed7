// Package metrics exposes the coach service's Prometheus collectors.
// All methods are safe on a nil *Metrics so components can run without them.
package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "posecoach"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	framesScored      prometheus.Counter
	framesGated       prometheus.Counter
	frameScore        prometheus.Histogram
	frameDuration     prometheus.Histogram
	activeSessions    prometheus.Gauge
	watchers          prometheus.Gauge
	sessionsCompleted prometheus.Counter
	sessionAccuracy   prometheus.Histogram
	eventsPublished   *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		framesScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_scored_total",
			Help:      "Total landmark frames scored.",
		}),
		framesGated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_gated_total",
			Help:      "Frames forced to zero because too few core landmarks were visible.",
		}),
		frameScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_score",
			Help:      "Distribution of per-frame scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent scoring one frame.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 8),
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions with a connected client.",
		}),
		watchers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watchers",
			Help:      "Connected session watchers.",
		}),
		sessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Sessions stopped with elapsed time.",
		}),
		sessionAccuracy: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_accuracy_percent",
			Help:      "Accuracy of completed sessions.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Session events handed to the broker, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.framesScored,
		m.framesGated,
		m.frameScore,
		m.frameDuration,
		m.activeSessions,
		m.watchers,
		m.sessionsCompleted,
		m.sessionAccuracy,
		m.eventsPublished,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	if m == nil {
		return func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNotFound)
		}
	}
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// FrameScored records one scored frame.
func (m *Metrics) FrameScored(score float64, gated bool, took time.Duration) {
	if m == nil {
		return
	}
	m.framesScored.Inc()
	m.frameScore.Observe(score)
	m.frameDuration.Observe(took.Seconds())
	if gated {
		m.framesGated.Inc()
	}
}

// SessionOpened tracks a new client session.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// SessionClosed tracks a detached client session.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

// WatcherJoined tracks a new watcher.
func (m *Metrics) WatcherJoined() {
	if m == nil {
		return
	}
	m.watchers.Inc()
}

// WatcherLeft tracks a departed watcher.
func (m *Metrics) WatcherLeft() {
	if m == nil {
		return
	}
	m.watchers.Dec()
}

// SessionCompleted records a finished session's accuracy.
func (m *Metrics) SessionCompleted(accuracy int) {
	if m == nil {
		return
	}
	m.sessionsCompleted.Inc()
	m.sessionAccuracy.Observe(float64(accuracy))
}

// EventPublished counts publisher outcomes: "ok", "error" or "dropped".
func (m *Metrics) EventPublished(result string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(result).Inc()
}
