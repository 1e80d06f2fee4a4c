package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	apiRequestsTotal   *prometheus.CounterVec
	apiLatencySeconds  *prometheus.HistogramVec
	apiErrorsTotal     *prometheus.CounterVec
	uploadsTotal       *prometheus.CounterVec
	checksTotal        *prometheus.CounterVec
	evaluationsCounter *prometheus.CounterVec
	reportsCounter     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartcheck_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smartcheck_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartcheck_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartcheck_uploads_total",
			Help: "Total number of files relayed to object storage.",
		}, []string{"kind"})

		checksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartcheck_plagiarism_checks_total",
			Help: "Total number of plagiarism check runs.",
		}, []string{"outcome"})

		evaluationsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartcheck_evaluations_total",
			Help: "Total number of evaluation runs.",
		}, []string{"outcome"})

		reportsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartcheck_class_reports_total",
			Help: "Total number of class performance report runs.",
		}, []string{"outcome"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal, uploadsTotal, checksTotal, evaluationsCounter, reportsCounter)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// Uploads exposes the counter for storage relays.
func Uploads() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsTotal
}

// PlagiarismChecks exposes the counter for plagiarism check runs.
func PlagiarismChecks() *prometheus.CounterVec {
	RegisterMetrics()
	return checksTotal
}

// Evaluations exposes the counter for evaluation runs.
func Evaluations() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsCounter
}

// ClassReports exposes the counter for class performance report runs.
func ClassReports() *prometheus.CounterVec {
	RegisterMetrics()
	return reportsCounter
}
