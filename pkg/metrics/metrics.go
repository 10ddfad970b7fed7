// Package metrics exposes conversion counters through a private Prometheus
// registry.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the rtac-cim metrics.
type Registry struct {
	ProfilesGenerated  prometheus.Counter
	ParseFailures      prometheus.Counter
	PointsTotal        *prometheus.CounterVec
	RemoteUnitsTotal   prometheus.Counter
	UnresolvedTotal    *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	JobsTotal          *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry returns a registry with every metric registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,
		ProfilesGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "rtaccim_profiles_generated_total",
			Help: "Total number of SC profiles generated",
		}),
		ParseFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "rtaccim_parse_failures_total",
			Help: "Total number of RTAC exports rejected as malformed",
		}),
		PointsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rtaccim_points_total",
			Help: "Points written to SC profiles by CIM class",
		}, []string{"class"}),
		RemoteUnitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "rtaccim_remote_units_total",
			Help: "Remote units written to SC profiles",
		}),
		UnresolvedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rtaccim_unresolved_total",
			Help: "References omitted from SC profiles by kind",
		}, []string{"kind"}),
		GenerationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rtaccim_generation_duration_seconds",
			Help:    "Time to parse and build one SC profile",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		JobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rtaccim_jobs_total",
			Help: "Pipeline jobs by outcome",
		}, []string{"outcome"}),
	}
}

// Gatherer returns the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ProfileCounts are the per-class counts of one generated profile.
type ProfileCounts struct {
	RemoteUnits int
	Analog      int
	Discrete    int
	Accumulator int
	Control     int
}

// RecordProfile records one generated profile.
func (r *Registry) RecordProfile(c ProfileCounts, duration time.Duration) {
	r.ProfilesGenerated.Inc()
	r.RemoteUnitsTotal.Add(float64(c.RemoteUnits))
	r.PointsTotal.WithLabelValues("analog").Add(float64(c.Analog))
	r.PointsTotal.WithLabelValues("discrete").Add(float64(c.Discrete))
	r.PointsTotal.WithLabelValues("accumulator").Add(float64(c.Accumulator))
	r.PointsTotal.WithLabelValues("control").Add(float64(c.Control))
	r.GenerationDuration.Observe(duration.Seconds())
}

// RecordParseFailure counts a malformed export.
func (r *Registry) RecordParseFailure() {
	r.ParseFailures.Inc()
}

// RecordUnresolved counts omitted references of one kind.
func (r *Registry) RecordUnresolved(kind string, n int) {
	if n <= 0 {
		return
	}
	r.UnresolvedTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordJob counts a finished pipeline job.
func (r *Registry) RecordJob(outcome string) {
	r.JobsTotal.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes the metrics in the node exporter textfile format.
func (r *Registry) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
