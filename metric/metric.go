// Package metric holds the Prometheus metrics of the validator.
package metric

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeOK labels successful operations.
const OutcomeOK = "ok"

// Metrics contains the validator metrics. A nil *Metrics records nothing.
type Metrics struct {
	ConfigureTotal *prometheus.CounterVec
	RunsTotal      *prometheus.CounterVec
	ReportsTotal   *prometheus.CounterVec
	RunDuration    prometheus.Histogram
}

// NewMetrics creates the metrics. They still have to be registered.
func NewMetrics() *Metrics {
	return &Metrics{
		ConfigureTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shacl",
				Subsystem: "validator",
				Name:      "configure_total",
				Help:      "Total number of configuration attempts by outcome",
			},
			[]string{"outcome"},
		),

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shacl",
				Subsystem: "validator",
				Name:      "runs_total",
				Help:      "Total number of validation runs by outcome",
			},
			[]string{"outcome"},
		),

		ReportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shacl",
				Subsystem: "validator",
				Name:      "reports_total",
				Help:      "Total number of validation reports by conformance",
			},
			[]string{"conforms"},
		),

		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "shacl",
				Subsystem: "validator",
				Name:      "run_duration_seconds",
				Help:      "Validation run duration in seconds, including parsing and serialization",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

// Collectors returns every metric for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.ConfigureTotal, m.RunsTotal, m.ReportsTotal, m.RunDuration}
}

// Register registers every metric with reg. Metrics already registered are
// not an error.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// RecordConfigure counts one configuration attempt.
func (m *Metrics) RecordConfigure(outcome string) {
	if m == nil {
		return
	}
	m.ConfigureTotal.WithLabelValues(outcome).Inc()
}

// RecordRun counts one run and observes its duration.
func (m *Metrics) RecordRun(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
}

// RecordReport counts one produced report.
func (m *Metrics) RecordReport(conforms bool) {
	if m == nil {
		return
	}
	m.ReportsTotal.WithLabelValues(strconv.FormatBool(conforms)).Inc()
}
