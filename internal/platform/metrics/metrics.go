package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	OnboardingsStarted   prometheus.Counter
	OnboardingsCompleted prometheus.Counter
	ExtractionFailures   prometheus.Counter
	ExtractionDuration   prometheus.Histogram
	CustomersVerified    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		OnboardingsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aptic_onboardings_started_total",
			Help: "Total number of onboarding sessions started",
		}),
		OnboardingsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aptic_onboardings_completed_total",
			Help: "Total number of onboarding sessions committed to the customer registry",
		}),
		ExtractionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aptic_extraction_failures_total",
			Help: "Total number of failed extraction gateway calls",
		}),
		ExtractionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aptic_extraction_duration_seconds",
			Help:    "Latency of extraction gateway calls",
			Buckets: prometheus.DefBuckets,
		}),
		CustomersVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aptic_customers_verified_total",
			Help: "Total number of customers promoted to Verified",
		}),
	}
}

// ObserveExtraction records one extraction gateway call.
func (m *Metrics) ObserveExtraction(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.ExtractionDuration.Observe(d.Seconds())
	if err != nil {
		m.ExtractionFailures.Inc()
	}
}

// IncOnboardingsStarted increments the started counter by 1.
func (m *Metrics) IncOnboardingsStarted() {
	if m != nil {
		m.OnboardingsStarted.Inc()
	}
}

// IncOnboardingsCompleted increments the completed counter by 1.
func (m *Metrics) IncOnboardingsCompleted() {
	if m != nil {
		m.OnboardingsCompleted.Inc()
	}
}

// IncCustomersVerified increments the verified counter by 1.
func (m *Metrics) IncCustomersVerified() {
	if m != nil {
		m.CustomersVerified.Inc()
	}
}
