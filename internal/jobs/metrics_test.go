package jobs

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	require.NoError(t, m.Track("reports:refresh").End(nil))

	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("reports:refresh").End(boom), boom)

	require.Equal(t, float64(1), testutil.ToFloat64(m.failures.WithLabelValues("reports:refresh")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("reports:refresh", "success")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("reports:refresh", "failure")))
}

func TestTrackerNilSafe(t *testing.T) {
	var m *Metrics
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("anything").End(boom), boom)
	require.NoError(t, m.Track("anything").End(nil))
}
