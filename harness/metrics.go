package harness

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"golang.org/x/xerrors"
)

// Metrics collects prometheus metrics for a single validation run. Each
// instance uses its own registry so runs never share state.
type Metrics struct {
	registry *prometheus.Registry

	vertices      prometheus.Gauge
	edges         prometheus.Gauge
	iterations    prometheus.Gauge
	globalDiff    prometheus.Gauge
	correct       prometheus.Gauge
	iterationTime prometheus.Histogram
	phaseTime     *prometheus.GaugeVec
}

// NewMetrics creates and registers the run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		vertices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pagerank_vertices",
			Help: "The number of vertices in the ranked graph",
		}),
		edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pagerank_edges",
			Help: "The number of edges in the ranked graph",
		}),
		iterations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pagerank_iterations",
			Help: "The number of iterations executed by the parallel engine",
		}),
		globalDiff: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pagerank_global_diff",
			Help: "The sum of absolute score differences of the last iteration",
		}),
		correct: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pagerank_correct",
			Help: "Set to 1 if the parallel scores matched the serial reference",
		}),
		iterationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pagerank_iteration_seconds",
			Help:    "The time spent in each parallel engine iteration",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		phaseTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pagerank_phase_seconds",
			Help: "The time spent in each phase of the run",
		}, []string{"phase"}),
	}

	m.registry.MustRegister(
		m.vertices, m.edges, m.iterations, m.globalDiff,
		m.correct, m.iterationTime, m.phaseTime,
	)
	return m
}

// Registry returns the registry that holds the run metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Push uploads the collected metrics to the Pushgateway at url under the
// provided job name.
func (m *Metrics) Push(url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).Push(); err != nil {
		return xerrors.Errorf("pushing metrics to %q: %w", url, err)
	}
	return nil
}
