// Package metrics provides Prometheus instrumentation for Execution and
// Visitor, adapted from the teacher's graph/metrics.go PrometheusMetrics
// type to this domain's counters (instantiations, edge visits, queue depth,
// step latency per process).
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector exposes Prometheus-compatible metrics for the state-space
// search: how many Execution instantiations ran, how many edges were
// recorded, current queue depth, and per-process step latency.
//
// All metrics are namespaced "racegraph_". Thread-safe: all methods use
// atomic gauge/counter operations internally (prometheus client types are
// themselves safe for concurrent use).
type Collector struct {
	instantiations prometheus.Counter
	edgeVisits     prometheus.Counter
	queueDepth     prometheus.Gauge
	stepLatency    *prometheus.HistogramVec

	mu      sync.RWMutex
	enabled bool
}

// New creates and registers every metric with registry. Pass
// prometheus.DefaultRegisterer for the global registry, or a fresh
// prometheus.NewRegistry() for test isolation.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	c := &Collector{enabled: true}

	c.instantiations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "racegraph",
		Name:      "instantiations_total",
		Help:      "Number of fresh Execution instantiations the Visitor has driven",
	})

	c.edgeVisits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "racegraph",
		Name:      "edge_visits_total",
		Help:      "Number of (pre_state, process_id) -> post_state edges traversed",
	})

	c.queueDepth = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "racegraph",
		Name:      "queue_depth",
		Help:      "Number of unexplored seed paths currently queued by the Visitor",
	})

	c.stepLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "racegraph",
		Name:      "step_latency_ms",
		Help:      "Process.Step duration in milliseconds",
		Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
	}, []string{"process_id", "status"})

	return c
}

// IncInstantiations records one fresh Execution instantiation.
func (c *Collector) IncInstantiations() {
	if !c.isEnabled() {
		return
	}
	c.instantiations.Inc()
}

// IncEdgeVisits records one edge traversal.
func (c *Collector) IncEdgeVisits() {
	if !c.isEnabled() {
		return
	}
	c.edgeVisits.Inc()
}

// SetQueueDepth sets the current unexplored-path queue length.
func (c *Collector) SetQueueDepth(n int) {
	if !c.isEnabled() {
		return
	}
	c.queueDepth.Set(float64(n))
}

// ObserveStepLatency records how long a single process step took.
func (c *Collector) ObserveStepLatency(processID int, status string, d time.Duration) {
	if !c.isEnabled() {
		return
	}
	c.stepLatency.WithLabelValues(strconv.Itoa(processID), status).Observe(float64(d.Milliseconds()))
}

// Disable stops recording (useful in tests that don't want metric churn).
func (c *Collector) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
}

// Enable resumes recording after Disable.
func (c *Collector) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = true
}

func (c *Collector) isEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}
