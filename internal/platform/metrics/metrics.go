package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EnrollmentsCreated prometheus.Counter
	DuplicatesRejected prometheus.Counter
	CPFChecks          *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EnrollmentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inscricao_enrollments_created_total",
			Help: "Total number of enrollments accepted",
		}),
		DuplicatesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inscricao_duplicates_rejected_total",
			Help: "Submissions rejected because the CPF already participated",
		}),
		CPFChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inscricao_cpf_checks_total",
			Help: "CPF eligibility checks by outcome",
		}, []string{"outcome"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inscricao_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// RecordCheck counts one eligibility check outcome
// (free, exists, participated, error).
func (m *Metrics) RecordCheck(outcome string) {
	if m == nil {
		return
	}
	m.CPFChecks.WithLabelValues(outcome).Inc()
}

// ObserveRequest records request latency for a route.
func (m *Metrics) ObserveRequest(route string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// IncEnrollments counts one accepted enrollment.
func (m *Metrics) IncEnrollments() {
	if m == nil {
		return
	}
	m.EnrollmentsCreated.Inc()
}

// IncDuplicates counts one duplicate-participation rejection.
func (m *Metrics) IncDuplicates() {
	if m == nil {
		return
	}
	m.DuplicatesRejected.Inc()
}
