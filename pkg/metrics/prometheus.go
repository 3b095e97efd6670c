// Package metrics provides Prometheus metrics for the gesture games.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// defaultBuckets cover per-frame inference, which normally lands well under 100ms.
var defaultBuckets = []float64{1, 2, 5, 10, 20, 50, 100, 250, 500, 1000}

// Manager owns every metric. A nil *Manager is valid and records nothing.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	framesProcessed   *prometheus.CounterVec
	gesturesDetected  *prometheus.CounterVec
	inferenceLatency  *prometheus.HistogramVec
	roundsResolved    *prometheus.CounterVec
	steeringActions   *prometheus.CounterVec
	samplesCollected  *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpRequestTiming *prometheus.HistogramVec
}

// NewManager creates a Manager on a private registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "mudra",
		buckets:   defaultBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.framesProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "frames_processed_total",
		Help:      "Frames run through detection and classification",
	}, []string{"game"})

	m.gesturesDetected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "gestures_detected_total",
		Help:      "Classified gestures by label",
	}, []string{"game", "gesture"})

	m.inferenceLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "inference_latency_milliseconds",
		Help:      "Detection plus classification time per frame",
		Buckets:   m.buckets,
	}, []string{"game"})

	m.roundsResolved = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rounds_resolved_total",
		Help:      "Rock-paper-scissors rounds by outcome",
	}, []string{"outcome"})

	m.steeringActions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "steering_actions_total",
		Help:      "Steering state changes applied to the keyboard",
	}, []string{"action"})

	m.samplesCollected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "samples_collected_total",
		Help:      "Labelled landmark samples stored for training",
	}, []string{"label"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestTiming = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request latency",
		Buckets:   m.buckets,
	}, []string{"endpoint", "method"})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFrame records one processed frame and its classified gesture.
func (m *Manager) ObserveFrame(game, gesture string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.framesProcessed.WithLabelValues(game).Inc()
	m.gesturesDetected.WithLabelValues(game, gesture).Inc()
	m.inferenceLatency.WithLabelValues(game).Observe(float64(elapsed.Microseconds()) / 1000)
}

// RecordRound counts a resolved round.
func (m *Manager) RecordRound(outcome string) {
	if m == nil {
		return
	}
	m.roundsResolved.WithLabelValues(outcome).Inc()
}

// RecordSteering counts an applied steering action.
func (m *Manager) RecordSteering(action string) {
	if m == nil {
		return
	}
	m.steeringActions.WithLabelValues(action).Inc()
}

// RecordSample counts a stored training sample.
func (m *Manager) RecordSample(label string) {
	if m == nil {
		return
	}
	m.samplesCollected.WithLabelValues(label).Inc()
}

// RecordHTTPRequest counts a finished request and its latency.
func (m *Manager) RecordHTTPRequest(endpoint, method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	m.httpRequestTiming.WithLabelValues(endpoint, method).Observe(float64(elapsed.Microseconds()) / 1000)
}
