package jobmetrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const task = "parts:image:purge"

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	clock := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	require.NoError(t, m.Track(task).End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track(task).End(boom), boom)

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(task, OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(task, OutcomeError)))
	require.Equal(t, float64(clock.Unix()), testutil.ToFloat64(m.lastSuccess.WithLabelValues(task)))
}

func TestFailureLeavesLastSuccessUnset(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	_ = m.Track(task).End(errors.New("boom"))
	require.Zero(t, testutil.ToFloat64(m.lastSuccess.WithLabelValues(task)))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("noop").End(boom), boom)
}
