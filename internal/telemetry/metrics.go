package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the per-run counters. It uses its own registry so repeated
// runs in one process (tests) never collide on the default one.
type Metrics struct {
	Registry *prometheus.Registry

	BenchmarksTotal *prometheus.CounterVec
	PhaseDuration   *prometheus.HistogramVec
	LastRun         prometheus.Gauge
}

// NewMetrics creates and registers the run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.BenchmarksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gadgetbench_benchmarks_total",
			Help: "Benchmarks processed, by outcome",
		},
		[]string{"status"},
	)

	m.PhaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gadgetbench_phase_duration_seconds",
			Help:    "Duration of each pipeline phase in seconds",
			Buckets: []float64{0.1, 1, 5, 15, 60, 180, 600, 1800},
		},
		[]string{"phase"},
	)

	m.LastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gadgetbench_last_run_timestamp_seconds",
			Help: "Unix time the last report was written",
		},
	)

	m.Registry.MustRegister(m.BenchmarksTotal, m.PhaseDuration, m.LastRun)
	return m
}

// BenchmarkDone counts one finished benchmark.
func (m *Metrics) BenchmarkDone(status string) {
	m.BenchmarksTotal.WithLabelValues(status).Inc()
}

// ObservePhase records how long a phase took.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	m.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// SetLastRun stamps the completion time of a run.
func (m *Metrics) SetLastRun(t time.Time) {
	m.LastRun.Set(float64(t.Unix()))
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
