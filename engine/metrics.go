package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job outcomes.
const (
	outcomeComplete = "complete"
	outcomePartial  = "partial"
	outcomeInvalid  = "invalid"
	outcomeFailed   = "failed"
)

// Metrics holds the Prometheus collectors of one Engine.
//
// Metrics:
//   - sectionrank_jobs_total{outcome} - Count of jobs by outcome
//   - sectionrank_job_duration_seconds - Histogram of job run times
//   - sectionrank_scorer_duration_seconds{scorer} - Histogram of scorer run times
//   - sectionrank_degraded_sections_total{scorer} - Count of sections scored with a fallback
//   - sectionrank_candidate_sections - Candidate sections of the last job
//   - sectionrank_selected_sections - Selected sections of the last job
type Metrics struct {
	registry *prometheus.Registry

	JobsTotal        *prometheus.CounterVec
	JobDuration      prometheus.Histogram
	ScorerDuration   *prometheus.HistogramVec
	DegradedSections *prometheus.CounterVec
	Candidates       prometheus.Gauge
	Selected         prometheus.Gauge
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		JobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectionrank_jobs_total",
				Help: "Total number of ranking jobs by outcome",
			},
			[]string{"outcome"},
		),

		JobDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sectionrank_job_duration_seconds",
				Help:    "Duration of ranking jobs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
			},
		),

		ScorerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sectionrank_scorer_duration_seconds",
				Help:    "Duration of a scorer pass in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~32s
			},
			[]string{"scorer"},
		),

		DegradedSections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectionrank_degraded_sections_total",
				Help: "Total number of sections scored with a fallback value",
			},
			[]string{"scorer"},
		),

		Candidates: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sectionrank_candidate_sections",
				Help: "Number of candidate sections in the last job",
			},
		),

		Selected: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sectionrank_selected_sections",
				Help: "Number of sections selected in the last job",
			},
		),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordJob records a finished job with its outcome and duration.
func (m *Metrics) RecordJob(outcome string, durationSeconds float64) {
	m.JobsTotal.WithLabelValues(outcome).Inc()
	if outcome != outcomeInvalid {
		m.JobDuration.Observe(durationSeconds)
	}
}

// RecordScorer records one scorer pass and its degraded sections.
func (m *Metrics) RecordScorer(scorer string, durationSeconds float64, degraded int) {
	m.ScorerDuration.WithLabelValues(scorer).Observe(durationSeconds)
	if degraded > 0 {
		m.DegradedSections.WithLabelValues(scorer).Add(float64(degraded))
	}
}

// SetSectionCounts updates the candidate and selected gauges.
func (m *Metrics) SetSectionCounts(candidates, selected int) {
	m.Candidates.Set(float64(candidates))
	m.Selected.Set(float64(selected))
}
