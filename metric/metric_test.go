package metric

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
	require.NoError(t, m.Register(reg), "registering twice should be tolerated")

	m.RecordConfigure(OutcomeOK)
	m.RecordConfigure("parse_error")
	m.RecordRun(OutcomeOK, 20*time.Millisecond)
	m.RecordRun(OutcomeOK, 30*time.Millisecond)
	m.RecordReport(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigureTotal.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigureTotal.WithLabelValues("parse_error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsTotal.WithLabelValues("false")))

	expected := `
# HELP shacl_validator_reports_total Total number of validation reports by conformance
# TYPE shacl_validator_reports_total counter
shacl_validator_reports_total{conforms="false"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "shacl_validator_reports_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RunDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordConfigure(OutcomeOK)
		m.RecordRun(OutcomeOK, time.Second)
		m.RecordReport(true)
	})
}
