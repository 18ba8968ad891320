package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.ReportsCreated.Inc()
	a.Votes.WithLabelValues("up").Inc()
	a.Votes.WithLabelValues("up").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ReportsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.Votes.WithLabelValues("up")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ReportsCreated))
}

func TestCollectorsAreNamespaced(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m.ReportsExpired))
	m.ReportsExpired.WithLabelValues(SweepSourceTicker).Add(3)

	n, err := testutil.GatherAndCount(reg, "aquaroute_reports_expired_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
