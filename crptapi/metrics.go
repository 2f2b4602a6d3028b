/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crptapi

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/acronis/go-crptapi/internal/libinfo"
)

// MetricsCollector collects metrics of submissions.
type MetricsCollector interface {
	// SubmissionDone is called once for every submission with its outcome and duration.
	SubmissionDone(outcome Outcome, duration time.Duration)
}

// PrometheusMetricsCollector is a Prometheus metrics collector of submissions.
type PrometheusMetricsCollector struct {
	// Submissions is a counter of submissions by outcome and HTTP status code.
	Submissions *prometheus.CounterVec

	// Durations is a histogram of submission durations by outcome.
	Durations *prometheus.HistogramVec
}

// NewPrometheusMetricsCollector creates a new Prometheus metrics collector.
func NewPrometheusMetricsCollector(namespace string) *PrometheusMetricsCollector {
	constLabels := libinfo.AddPrometheusLibVersionLabel(nil)
	return &PrometheusMetricsCollector{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "crpt_submissions_total",
			Help:        "Number of document submissions by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome", "status"}),
		Durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "crpt_submission_duration_seconds",
			Help:        "A histogram of the document submission durations.",
			Buckets:     []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			ConstLabels: constLabels,
		}, []string{"outcome"}),
	}
}

// MustRegister registers the Prometheus metrics.
func (pm *PrometheusMetricsCollector) MustRegister() {
	prometheus.MustRegister(pm.Submissions, pm.Durations)
}

// Unregister the Prometheus metrics.
func (pm *PrometheusMetricsCollector) Unregister() {
	prometheus.Unregister(pm.Submissions)
	prometheus.Unregister(pm.Durations)
}

// SubmissionDone counts the submission and observes its duration.
// Status label is empty for submissions that did not get a response.
func (pm *PrometheusMetricsCollector) SubmissionDone(outcome Outcome, duration time.Duration) {
	var status string
	if outcome.Kind == OutcomeSent {
		status = strconv.Itoa(outcome.StatusCode)
	}
	pm.Submissions.WithLabelValues(outcome.Kind.String(), status).Inc()
	pm.Durations.WithLabelValues(outcome.Kind.String()).Observe(duration.Seconds())
}

type disabledMetrics struct{}

func (disabledMetrics) SubmissionDone(Outcome, time.Duration) {}
